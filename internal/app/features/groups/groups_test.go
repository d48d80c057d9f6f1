package groups_test

import (
	"net/http"
	"testing"

	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	"github.com/dalemusser/laag/internal/app/features/groups"
	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/app/system/indexes"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	handler := groups.NewHandler(db, nil, 0, apierrors.NewErrorLogger(logger), logger)
	return handler, testutil.NewFixtures(t, db)
}

type itemResp struct {
	ID          string `json:"id"`
	GroupName   string `json:"group_name"`
	NoMembers   int    `json:"no_members"`
	MemberCount int64  `json:"member_count"`
	IsOwner     bool   `json:"is_owner"`
	CanManage   bool   `json:"can_manage"`
}

func TestHandleCreateGroup(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	m1 := fx.CreateUser(ctx, "Mia", "mia@example.com")
	user := testutil.UserFromProfile(owner)

	rec := testutil.NewRecorder()
	h.HandleCreateGroup(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/groups",
		map[string]any{"group_name": "Hikers", "member_ids": []string{m1.ID.Hex(), m1.ID.Hex()}}, user))
	rec.AssertStatus(t, http.StatusCreated)

	var got itemResp
	rec.DecodeJSON(t, &got)
	if got.NoMembers != 2 || got.MemberCount != 2 {
		t.Errorf("no_members=%d member_count=%d, want 2/2", got.NoMembers, got.MemberCount)
	}
	if !got.IsOwner || !got.CanManage {
		t.Errorf("creator should own and manage the group: %+v", got)
	}
}

func TestHandleCreateGroup_Validation(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Olga", "olga@example.com")
	user := testutil.UserFromProfile(owner)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"blank name", map[string]any{"group_name": "   "}},
		{"bad member id", map[string]any{"group_name": "G", "member_ids": []string{"nope"}}},
		{"unknown member", map[string]any{"group_name": "G", "member_ids": []string{testutil.RegularUser().ID}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreateGroup(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/groups", tc.body, user))
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}

	n, _ := fx.DB().Collection("groups").CountDocuments(ctx, bson.M{})
	if n != 0 {
		t.Errorf("groups created on invalid input: %d", n)
	}
}

func TestServeGroupsList_OnlyMine(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fx.CreateUser(ctx, "Me", "me@example.com")
	other := fx.CreateUser(ctx, "Other", "other@example.com")
	owned := fx.CreateGroup(ctx, "Owned", me.ID)
	joined := fx.CreateGroup(ctx, "Joined", other.ID)
	fx.AddMember(ctx, joined.ID, me.ID)
	fx.CreateGroup(ctx, "Elsewhere", other.ID)

	rec := testutil.NewRecorder()
	h.ServeGroupsList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/groups", nil, testutil.UserFromProfile(me)))
	rec.AssertStatus(t, http.StatusOK)

	var got []itemResp
	rec.DecodeJSON(t, &got)
	if len(got) != 2 {
		t.Fatalf("got %d groups, want 2", len(got))
	}
	ids := map[string]bool{got[0].ID: true, got[1].ID: true}
	if !ids[owned.ID.Hex()] || !ids[joined.ID.Hex()] {
		t.Errorf("unexpected groups %+v", got)
	}

	rec = testutil.NewRecorder()
	h.ServeGroupsList(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/groups?all=1", nil, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.DecodeJSON(t, &got)
	if len(got) != 3 {
		t.Errorf("admin all: got %d groups, want 3", len(got))
	}
}

func TestServeGroup_Access(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	stranger := fx.CreateUser(ctx, "Stranger", "stranger@example.com")
	g := fx.CreateGroup(ctx, "Club", owner.ID)
	fx.AddMember(ctx, g.ID, member.ID)

	tests := []struct {
		name string
		user testutil.TestUser
		want int
	}{
		{"owner", testutil.UserFromProfile(owner), http.StatusOK},
		{"member", testutil.UserFromProfile(member), http.StatusOK},
		{"admin", testutil.AdminUser(), http.StatusOK},
		{"stranger", testutil.UserFromProfile(stranger), http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest(http.MethodGet, "/groups/"+g.ID.Hex(), nil, tc.user)
			req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
			rec := testutil.NewRecorder()
			h.ServeGroup(rec, req)
			rec.AssertStatus(t, tc.want)
		})
	}

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/groups/bad", nil, testutil.UserFromProfile(owner))
	req = testutil.WithChiURLParam(req, "id", "bad")
	rec := testutil.NewRecorder()
	h.ServeGroup(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleEditAndDeleteGroup(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	member := fx.CreateUser(ctx, "Member", "member@example.com")
	g := fx.CreateGroup(ctx, "Club", owner.ID)
	fx.AddMember(ctx, g.ID, member.ID)

	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", map[string]string{"group_name": "Nope"}, testutil.UserFromProfile(member))
	rec := testutil.NewRecorder()
	h.HandleEditGroup(rec, testutil.WithChiURLParam(req, "id", g.ID.Hex()))
	rec.AssertStatus(t, http.StatusForbidden)

	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/", map[string]string{"group_name": " Book Club "}, testutil.UserFromProfile(owner))
	rec = testutil.NewRecorder()
	h.HandleEditGroup(rec, testutil.WithChiURLParam(req, "id", g.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"group_name":"Book Club"`)

	req = testutil.NewAuthenticatedRequest(http.MethodPost, "/", nil, testutil.UserFromProfile(owner))
	rec = testutil.NewRecorder()
	h.HandleDeleteGroup(rec, testutil.WithChiURLParam(req, "id", g.ID.Hex()))
	rec.AssertStatus(t, http.StatusNoContent)

	if _, err := groupstore.New(fx.DB()).GetByID(ctx, g.ID); err != groupstore.ErrNotFound {
		t.Errorf("GetByID after delete: err=%v, want ErrNotFound", err)
	}
}

func TestMembers_AddRemove(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, fx.DB()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	newbie := fx.CreateUser(ctx, "Newbie", "newbie@example.com")
	admin := fx.CreateAdmin(ctx, "Root", "root@example.com")
	g := fx.CreateGroup(ctx, "Club", owner.ID)
	ownerUser := testutil.UserFromProfile(owner)

	call := func(fn http.HandlerFunc, user testutil.TestUser, body any) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest(http.MethodPost, "/", body, user)
		rec := testutil.NewRecorder()
		fn(rec, testutil.WithChiURLParam(req, "id", g.ID.Hex()))
		return rec
	}

	// Available excludes the owner and admins.
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/?q=new", nil, ownerUser)
	rec := testutil.NewRecorder()
	h.ServeMembers(rec, testutil.WithChiURLParam(req, "id", g.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	var md struct {
		Members   []membershipstore.Member `json:"members"`
		Available []struct {
			ID string `json:"id"`
		} `json:"available"`
	}
	rec.DecodeJSON(t, &md)
	if len(md.Members) != 1 || len(md.Available) != 1 || md.Available[0].ID != newbie.ID.Hex() {
		t.Fatalf("members=%d available=%+v", len(md.Members), md.Available)
	}

	call(h.HandleAddMember, ownerUser, map[string]string{"profile_id": admin.ID.Hex()}).AssertStatus(t, http.StatusBadRequest)

	rec = call(h.HandleAddMember, ownerUser, map[string]string{"profile_id": newbie.ID.Hex()})
	rec.AssertStatus(t, http.StatusCreated)
	var added membershipstore.Member
	rec.DecodeJSON(t, &added)

	call(h.HandleAddMember, ownerUser, map[string]string{"profile_id": newbie.ID.Hex()}).AssertStatus(t, http.StatusConflict)

	// no_members is not maintained after creation.
	stored, _ := groupstore.New(fx.DB()).GetByID(ctx, g.ID)
	if stored.NoMembers != 1 {
		t.Errorf("no_members = %d, want 1", stored.NoMembers)
	}

	// The owner's own row cannot be removed.
	ownerRows, _ := membershipstore.New(fx.DB()).ListActive(ctx, g.ID)
	for _, m := range ownerRows {
		if m.Profile.ID == owner.ID {
			call(h.HandleRemoveMember, ownerUser, map[string]string{"membership_id": m.MembershipID.Hex()}).AssertStatus(t, http.StatusBadRequest)
		}
	}

	// A member can leave on their own.
	call(h.HandleRemoveMember, testutil.UserFromProfile(newbie), map[string]string{"membership_id": added.MembershipID.Hex()}).AssertStatus(t, http.StatusNoContent)
	call(h.HandleRemoveMember, ownerUser, map[string]string{"membership_id": added.MembershipID.Hex()}).AssertStatus(t, http.StatusNotFound)

	n, _ := membershipstore.New(fx.DB()).CountActive(ctx, g.ID)
	if n != 1 {
		t.Errorf("active members = %d, want 1", n)
	}
}
