package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateWithoutMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	members := membershipstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	g, err := store.Create(ctx, models.Group{GroupName: " Hikers ", Owner: owner.ID}, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.NoMembers != 1 || g.GroupName != "Hikers" || g.GroupNameCI != "hikers" {
		t.Errorf("unexpected group %+v", g)
	}
	if ok, _ := members.IsActiveMember(ctx, g.ID, owner.ID); !ok {
		t.Error("owner should have a membership row")
	}

	// no_members is written once; adding a member does not change it
	ana := fx.CreateUser(ctx, "Ana", "ana@example.com")
	if _, err := members.Add(ctx, g.ID, ana.ID); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.NoMembers != 1 {
		t.Errorf("no_members after add = %d, want 1", got.NoMembers)
	}
	if n, _ := members.CountActive(ctx, g.ID); n != 2 {
		t.Errorf("live count = %d, want 2", n)
	}
}

func TestStore_CreateDedupesMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	members := membershipstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	ana := fx.CreateUser(ctx, "Ana", "ana@example.com")
	ben := fx.CreateUser(ctx, "Ben", "ben@example.com")

	g, err := store.Create(ctx, models.Group{GroupName: "Climbers", Owner: owner.ID},
		[]primitive.ObjectID{ana.ID, ben.ID, ana.ID, owner.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.NoMembers != 3 {
		t.Errorf("no_members = %d, want 3", g.NoMembers)
	}
	if n, _ := members.CountActive(ctx, g.ID); n != 3 {
		t.Errorf("membership rows = %d, want 3", n)
	}
}

func TestStore_CreateBlankName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Group{GroupName: "  ", Owner: primitive.NewObjectID()}, nil); !errors.Is(err, groupstore.ErrBlankName) {
		t.Errorf("expected ErrBlankName, got %v", err)
	}
}

func TestStore_ListForProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	members := membershipstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	ana := fx.CreateUser(ctx, "Ana", "ana@example.com")

	mine := fx.CreateGroup(ctx, "B Mine", ana.ID)
	joined := fx.CreateGroup(ctx, "A Joined", owner.ID)
	left := fx.CreateGroup(ctx, "C Left", owner.ID)
	deleted := fx.CreateGroup(ctx, "D Deleted", ana.ID)
	fx.CreateGroup(ctx, "E Other", owner.ID)

	fx.AddMember(ctx, joined.ID, ana.ID)
	row := fx.AddMember(ctx, left.ID, ana.ID)
	_ = members.Remove(ctx, row.ID)
	_ = store.SoftDelete(ctx, deleted.ID)

	got, err := store.ListForProfile(ctx, ana.ID)
	if err != nil {
		t.Fatalf("ListForProfile: %v", err)
	}
	if len(got) != 2 || got[0].ID != joined.ID || got[1].ID != mine.ID {
		t.Errorf("ListForProfile = %+v", got)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Owner", "owner@example.com")
	g := fx.CreateGroup(ctx, "Old", owner.ID)

	if err := store.UpdateInfo(ctx, g.ID, "New Name"); err != nil {
		t.Fatalf("UpdateInfo: %v", err)
	}
	if err := store.SetPicture(ctx, g.ID, "groups/2024/01/x-pic.png"); err != nil {
		t.Fatalf("SetPicture: %v", err)
	}
	got, _ := store.GetByID(ctx, g.ID)
	if got.GroupName != "New Name" || got.GroupPicture != "groups/2024/01/x-pic.png" || got.Owner != owner.ID {
		t.Errorf("unexpected group %+v", got)
	}

	if err := store.SoftDelete(ctx, g.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := store.GetByID(ctx, g.ID); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("GetByID after delete: %v", err)
	}
	if err := store.UpdateInfo(ctx, g.ID, "Again"); !errors.Is(err, groupstore.ErrNotFound) {
		t.Errorf("UpdateInfo after delete: %v", err)
	}
	all, _ := store.ListAll(ctx)
	if len(all) != 0 {
		t.Errorf("ListAll after delete = %+v", all)
	}
}
