package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/laag/internal/app/system/validators"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("list collections: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"profiles", "groups", "group_members", "laags", "laag_attendees",
		"laag_images", "comments", "laag_notifications", "laag_notification_reads"} {
		if !have[want] {
			t.Errorf("collection %q was not created", want)
		}
	}
}

func TestSchemas(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	oid := primitive.NewObjectID
	now := time.Now()
	fun := 7

	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{"profile valid", "profiles", bson.M{"full_name": "Ana", "email": "a@x.io", "email_ci": "a@x.io", "role": "user", "is_deleted": false}, false},
		{"profile bad role", "profiles", bson.M{"full_name": "Ana", "email": "a@x.io", "email_ci": "a@x.io", "role": "superadmin", "is_deleted": false}, true},
		{"profile blank name", "profiles", bson.M{"full_name": "  ", "email": "a@x.io", "email_ci": "a@x.io", "role": "user", "is_deleted": false}, true},
		{"group valid", "groups", bson.M{"group_name": "Hikers", "owner": oid(), "no_members": 1, "is_deleted": false}, false},
		{"group zero members", "groups", bson.M{"group_name": "Hikers", "owner": oid(), "no_members": 0, "is_deleted": false}, true},
		{"member missing flag", "group_members", bson.M{"group_id": oid(), "group_member": oid()}, true},
		{"laag valid", "laags", bson.M{"what": "Hike", "status": "Planning", "privacy": "public", "organizer": oid(), "group_id": oid(),
			"is_deleted": false, "estimated_cost": 12.5, "actual_cost": nil, "fun_meter": nil, "when_start": now}, false},
		{"laag completed with fun", "laags", bson.M{"what": "Hike", "status": "Completed", "privacy": "group-only", "organizer": oid(), "group_id": oid(),
			"is_deleted": false, "fun_meter": fun, "actual_cost": 10.0}, false},
		{"laag bad status", "laags", bson.M{"what": "Hike", "status": "Done", "privacy": "public", "organizer": oid(), "group_id": oid(), "is_deleted": false}, true},
		{"laag fun too high", "laags", bson.M{"what": "Hike", "status": "Completed", "privacy": "public", "organizer": oid(), "group_id": oid(), "is_deleted": false, "fun_meter": 11}, true},
		{"notification planning rejected", "laag_notifications", bson.M{"laag_id": oid(), "group_id": oid(), "laag_status": "Planning"}, true},
		{"notification read valid", "laag_notification_reads", bson.M{"notification_id": oid(), "user_id": oid(), "is_read": false, "read_at": nil}, false},
		{"comment blank", "comments", bson.M{"laag_id": oid(), "user_id": oid(), "comment": "", "is_deleted": false}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if (err != nil) != tt.wantErr {
				t.Errorf("insert into %s: err = %v, wantErr %v", tt.coll, err, tt.wantErr)
			}
		})
	}
}
