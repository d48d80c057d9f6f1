package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/laag/internal/app/features/dashboard"
	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, pageSize int) (*dashboard.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return dashboard.NewHandler(db, pageSize, apierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func TestServeDashboard_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t, 0)
	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeDashboard_ByRole(t *testing.T) {
	h, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Uma", "uma@example.com")
	g := fx.CreateGroup(ctx, "Club", u.ID)
	l := fx.CreateLaag(ctx, "Soon", g.ID, u.ID, models.PrivacyGroupOnly)
	fx.AddAttendee(ctx, l.ID, u.ID)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", nil, testutil.UserFromProfile(u)))
	rec.AssertStatus(t, http.StatusOK)
	var ud struct {
		Groups   int `json:"groups"`
		Upcoming []struct {
			What string `json:"what"`
		} `json:"upcoming"`
		MyRank *struct {
			Rank  int `json:"rank"`
			Count int `json:"count"`
		} `json:"my_rank"`
	}
	rec.DecodeJSON(t, &ud)
	if ud.Groups != 1 || len(ud.Upcoming) != 1 || ud.Upcoming[0].What != "Soon" {
		t.Errorf("unexpected user dashboard %+v", ud)
	}
	if ud.MyRank == nil || ud.MyRank.Rank != 1 || ud.MyRank.Count != 1 {
		t.Errorf("my_rank = %+v, want rank 1 with 1 laag", ud.MyRank)
	}

	rec = testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/dashboard", nil, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	var ad struct {
		Counts struct {
			Laags         int64            `json:"laags"`
			LaagsByStatus map[string]int64 `json:"laags_by_status"`
		} `json:"counts"`
	}
	rec.DecodeJSON(t, &ad)
	if ad.Counts.Laags != 1 || ad.Counts.LaagsByStatus["Planning"] != 1 || ad.Counts.LaagsByStatus["Cancelled"] != 0 {
		t.Errorf("unexpected admin counts %+v", ad.Counts)
	}
}

func TestServeAdmin_ForbiddenForUsers(t *testing.T) {
	h, _ := newTestHandler(t, 0)
	rec := testutil.NewRecorder()
	h.ServeAdmin(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/dashboard", nil, testutil.RegularUser()))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeLeaderboard_ShowMore(t *testing.T) {
	h, fx := newTestHandler(t, 2)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	g := fx.CreateGroup(ctx, "Club", owner.ID)
	names := []string{"Ada", "Bo", "Cy"}
	for i, name := range names {
		p := fx.CreateUser(ctx, name, name+"@example.com")
		for j := 0; j <= i; j++ {
			l := fx.CreateLaag(ctx, name, g.ID, owner.ID, models.PrivacyPublic)
			fx.AddAttendee(ctx, l.ID, p.ID)
		}
	}

	get := func(target string) (entries []struct {
		Rank    int `json:"rank"`
		Profile struct {
			FullName string `json:"full_name"`
		} `json:"profile"`
	}, hasNext bool) {
		rec := testutil.NewRecorder()
		h.ServeLeaderboard(rec, testutil.NewAuthenticatedRequest(http.MethodGet, target, nil, testutil.UserFromProfile(owner)))
		rec.AssertStatus(t, http.StatusOK)
		var page struct {
			Entries []struct {
				Rank    int `json:"rank"`
				Profile struct {
					FullName string `json:"full_name"`
				} `json:"profile"`
			} `json:"entries"`
			Range struct {
				HasNext bool `json:"has_next"`
			} `json:"range"`
		}
		rec.DecodeJSON(t, &page)
		return page.Entries, page.Range.HasNext
	}

	first, more := get("/leaderboard")
	if len(first) != 2 || !more || first[0].Profile.FullName != "Cy" {
		t.Fatalf("first page = %+v (has_next %v)", first, more)
	}
	all, more := get("/leaderboard?shown=2")
	if len(all) != 3 || more || all[2].Profile.FullName != "Ada" {
		t.Errorf("second page = %+v (has_next %v)", all, more)
	}
}

func TestAdminProfiles_ListAndDelete(t *testing.T) {
	h, fx := newTestHandler(t, 0)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "Root", "root@example.com")
	victim := fx.CreateUser(ctx, "Victor", "victor@example.com")
	adminUser := testutil.UserFromProfile(admin)

	rec := testutil.NewRecorder()
	h.ServeProfiles(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/profiles?q=vic", nil, adminUser))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Victor")

	del := func(id string) *testutil.ResponseRecorder {
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodPost, "/", nil, adminUser), "id", id)
		rec := testutil.NewRecorder()
		h.HandleDeleteProfile(rec, req)
		return rec
	}
	del(admin.ID.Hex()).AssertStatus(t, http.StatusBadRequest)
	del(victim.ID.Hex()).AssertStatus(t, http.StatusNoContent)
	del(victim.ID.Hex()).AssertStatus(t, http.StatusNotFound)

	var stored models.Profile
	if err := fx.DB().Collection("profiles").FindOne(ctx, bson.M{"_id": victim.ID}).Decode(&stored); err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if !stored.IsDeleted {
		t.Error("profile row should be kept with is_deleted=true")
	}
}
