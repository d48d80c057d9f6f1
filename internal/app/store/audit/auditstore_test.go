package auditstore_test

import (
	"testing"
	"time"

	auditstore "github.com/dalemusser/laag/internal/app/store/audit"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogFillsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := auditstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	if err := store.Log(ctx, auditstore.Event{
		Category:  auditstore.CategoryAuth,
		EventType: auditstore.EventLoginSuccess,
		IP:        "192.168.1.1",
		Success:   true,
	}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, auditstore.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("timestamp %v is before %v", events[0].Timestamp, before)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := auditstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID()
	group := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)

	seed := []auditstore.Event{
		{Timestamp: base, Category: auditstore.CategoryAuth, EventType: auditstore.EventLoginSuccess, UserID: &alice, Success: true},
		{Timestamp: base.Add(time.Minute), Category: auditstore.CategoryAuth, EventType: auditstore.EventLoginFailed, UserID: &alice},
		{Timestamp: base.Add(2 * time.Minute), Category: auditstore.CategoryAdmin, EventType: auditstore.EventMemberAdded, UserID: &alice, GroupID: &group, Success: true},
		{Timestamp: base.Add(3 * time.Minute), Category: auditstore.CategoryAdmin, EventType: auditstore.EventGroupDeleted, GroupID: &group, Success: true},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	start := base.Add(90 * time.Second)
	tests := []struct {
		name   string
		filter auditstore.QueryFilter
		want   int64
	}{
		{"all", auditstore.QueryFilter{}, 4},
		{"by user", auditstore.QueryFilter{UserID: &alice}, 3},
		{"by group", auditstore.QueryFilter{GroupID: &group}, 2},
		{"by category", auditstore.QueryFilter{Category: auditstore.CategoryAuth}, 2},
		{"by type", auditstore.QueryFilter{EventType: auditstore.EventLoginFailed}, 1},
		{"since", auditstore.QueryFilter{StartTime: &start}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Count(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Count = %d, want %d", got, tt.want)
			}
			events, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if int64(len(events)) != tt.want {
				t.Errorf("Query returned %d events, want %d", len(events), tt.want)
			}
		})
	}

	page, err := store.Query(ctx, auditstore.QueryFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page) != 1 || page[0].EventType != auditstore.EventMemberAdded {
		t.Errorf("second newest event = %+v, want member_added", page)
	}
}

func TestStore_FailedLogins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := auditstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for _, e := range []auditstore.Event{
		{Timestamp: now.Add(-2 * time.Hour), Category: auditstore.CategoryAuth, EventType: auditstore.EventLoginFailed},
		{Timestamp: now.Add(-time.Minute), Category: auditstore.CategoryAuth, EventType: auditstore.EventLoginFailed},
		{Timestamp: now.Add(-time.Minute), Category: auditstore.CategoryAuth, EventType: auditstore.EventLoginRateLimited},
		{Timestamp: now.Add(-time.Minute), Category: auditstore.CategoryAuth, EventType: auditstore.EventLoginSuccess, Success: true},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	events, err := store.FailedLogins(ctx, now.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("FailedLogins failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("expected 2 recent failures, got %d", len(events))
	}
}
