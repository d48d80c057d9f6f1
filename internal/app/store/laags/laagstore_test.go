package laagstore_test

import (
	"errors"
	"testing"
	"time"

	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateForcesPlanning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := laagstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateUser(ctx, "Org", "org@example.com")
	ana := fx.CreateUser(ctx, "Ana", "ana@example.com")
	g := fx.CreateGroup(ctx, "G", org.ID)

	cost := 99.0
	fun := 7
	start := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	l, err := store.Create(ctx, models.Laag{
		What:          " Picnic ",
		Where:         "Park",
		Status:        models.StatusCompleted,
		ActualCost:    &cost,
		FunMeter:      &fun,
		Privacy:       models.PrivacyGroupOnly,
		WhenStart:     start,
		WhenEnd:       start.Add(time.Hour),
		EstimatedCost: 20,
		Organizer:     org.ID,
		GroupID:       g.ID,
	}, []primitive.ObjectID{ana.ID, org.ID, ana.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if l.Status != models.StatusPlanning || l.ActualCost != nil || l.FunMeter != nil || l.What != "Picnic" {
		t.Errorf("unexpected laag %+v", l)
	}

	n, _ := db.Collection("laag_attendees").CountDocuments(ctx, bson.M{"laag_id": l.ID, "is_removed": false})
	if n != 2 {
		t.Errorf("attendee rows = %d, want 2", n)
	}

	got, err := store.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusPlanning || !got.WhenStart.Equal(start) {
		t.Errorf("stored laag = %+v", got)
	}
}

func TestStore_SetStatusOnlyFromPlanning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := laagstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateUser(ctx, "Org", "org@example.com")
	g := fx.CreateGroup(ctx, "G", org.ID)
	l := fx.CreateLaag(ctx, "Hike", g.ID, org.ID, models.PrivacyGroupOnly)

	if err := store.SetStatus(ctx, l.ID, models.StatusPlanning, nil); !errors.Is(err, laagstore.ErrBadStatus) {
		t.Errorf("Planning target: got %v, want ErrBadStatus", err)
	}

	cost := 12.5
	fun := 9
	comp := &laagstore.Completion{ActualCost: &cost, FunMeter: &fun, Privacy: models.PrivacyPublic, Type: "outdoor"}
	if err := store.SetStatus(ctx, l.ID, models.StatusCompleted, comp); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, _ := store.GetByID(ctx, l.ID)
	if got.Status != models.StatusCompleted || got.ActualCost == nil || *got.ActualCost != 12.5 ||
		got.FunMeter == nil || *got.FunMeter != 9 || got.Privacy != models.PrivacyPublic || got.Type != "outdoor" {
		t.Errorf("completed laag = %+v", got)
	}

	for _, to := range []models.LaagStatus{models.StatusCancelled, models.StatusCompleted} {
		if err := store.SetStatus(ctx, l.ID, to, nil); !errors.Is(err, laagstore.ErrNotPlanning) {
			t.Errorf("terminal -> %s: got %v, want ErrNotPlanning", to, err)
		}
	}
	got, _ = store.GetByID(ctx, l.ID)
	if got.Status != models.StatusCompleted {
		t.Errorf("status rewritten to %s", got.Status)
	}

	if err := store.SetStatus(ctx, primitive.NewObjectID(), models.StatusCancelled, nil); !errors.Is(err, laagstore.ErrNotFound) {
		t.Errorf("missing laag: got %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateDetails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := laagstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateUser(ctx, "Org", "org@example.com")
	g := fx.CreateGroup(ctx, "G", org.ID)
	l := fx.CreateLaag(ctx, "Hike", g.ID, org.ID, models.PrivacyGroupOnly)

	d := laagstore.Details{
		What:          " Long hike ",
		Where:         "Ridge",
		Why:           "Views",
		EstimatedCost: 30,
		WhenStart:     l.WhenStart,
		WhenEnd:       l.WhenEnd,
		Privacy:       models.PrivacyPublic,
	}
	if err := store.UpdateDetails(ctx, l.ID, d); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	got, _ := store.GetByID(ctx, l.ID)
	if got.What != "Long hike" || got.EstimatedCost != 30 || got.Privacy != models.PrivacyPublic || got.Status != models.StatusPlanning {
		t.Errorf("updated laag = %+v", got)
	}

	if err := store.SetStatus(ctx, l.ID, models.StatusCancelled, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := store.UpdateDetails(ctx, l.ID, d); !errors.Is(err, laagstore.ErrNotPlanning) {
		t.Errorf("edit after cancel: got %v, want ErrNotPlanning", err)
	}
}

func TestStore_ListFeedAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := laagstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateUser(ctx, "Org", "org@example.com")
	ana := fx.CreateUser(ctx, "Ana", "ana@example.com")
	mine := fx.CreateGroup(ctx, "Mine", org.ID)
	other := fx.CreateGroup(ctx, "Other", org.ID)
	fx.AddMember(ctx, mine.ID, ana.ID)

	inMine := fx.CreateLaag(ctx, "Private mine", mine.ID, org.ID, models.PrivacyGroupOnly)
	public := fx.CreateLaag(ctx, "Public other", other.ID, org.ID, models.PrivacyPublic)
	fx.CreateLaag(ctx, "Private other", other.ID, org.ID, models.PrivacyGroupOnly)
	gone := fx.CreateLaag(ctx, "Deleted", mine.ID, org.ID, models.PrivacyPublic)

	if err := store.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := store.SoftDelete(ctx, gone.ID); !errors.Is(err, laagstore.ErrNotFound) {
		t.Errorf("second SoftDelete: got %v", err)
	}

	feed, err := store.ListFeed(ctx, ana.ID)
	if err != nil {
		t.Fatalf("ListFeed: %v", err)
	}
	got := map[primitive.ObjectID]bool{}
	for _, l := range feed {
		got[l.ID] = true
	}
	if len(feed) != 2 || !got[inMine.ID] || !got[public.ID] {
		t.Errorf("feed = %+v", feed)
	}

	byGroup, _ := store.ListByGroup(ctx, mine.ID)
	if len(byGroup) != 1 || byGroup[0].ID != inMine.ID {
		t.Errorf("ListByGroup = %+v", byGroup)
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[models.StatusPlanning] != 3 || counts[models.StatusCompleted] != 0 {
		t.Errorf("CountByStatus = %v", counts)
	}
}

func TestStore_ListFeedSkipsDeletedGroups(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := laagstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateUser(ctx, "Org", "org@example.com")
	ana := fx.CreateUser(ctx, "Ana", "ana@example.com")
	live := fx.CreateGroup(ctx, "Live", org.ID)
	closed := fx.CreateGroup(ctx, "Closed", org.ID)
	fx.AddMember(ctx, closed.ID, ana.ID)

	kept := fx.CreateLaag(ctx, "Still here", live.ID, org.ID, models.PrivacyPublic)
	fx.CreateLaag(ctx, "Public in closed", closed.ID, org.ID, models.PrivacyPublic)
	fx.CreateLaag(ctx, "Members only in closed", closed.ID, org.ID, models.PrivacyGroupOnly)

	if err := groupstore.New(db).SoftDelete(ctx, closed.ID); err != nil {
		t.Fatalf("group SoftDelete: %v", err)
	}

	for _, who := range []primitive.ObjectID{ana.ID, org.ID} {
		feed, err := store.ListFeed(ctx, who)
		if err != nil {
			t.Fatalf("ListFeed: %v", err)
		}
		if len(feed) != 1 || feed[0].ID != kept.ID {
			t.Errorf("feed for %s = %+v, want only %q", who.Hex(), feed, kept.What)
		}
	}
}
