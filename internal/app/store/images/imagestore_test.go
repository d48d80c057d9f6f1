package imagestore_test

import (
	"errors"
	"testing"

	imagestore "github.com/dalemusser/laag/internal/app/store/images"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_AddListDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := imagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	laagID := primitive.NewObjectID()
	uploader := primitive.NewObjectID()

	first, err := store.Add(ctx, laagID, "laags/2024/05/aaaa1111-one.jpg", uploader)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.AddMany(ctx, laagID, []string{"laags/2024/05/bbbb2222-two.jpg", "laags/2024/05/cccc3333-three.jpg"}, uploader); err != nil {
		t.Fatalf("AddMany: %v", err)
	}
	if _, err := store.Add(ctx, primitive.NewObjectID(), "laags/2024/05/dddd4444-other.jpg", uploader); err != nil {
		t.Fatalf("Add other: %v", err)
	}

	list, err := store.ListByLaag(ctx, laagID)
	if err != nil {
		t.Fatalf("ListByLaag: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListByLaag len = %d, want 3", len(list))
	}

	if err := store.SoftDelete(ctx, first.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := store.GetByID(ctx, first.ID); !errors.Is(err, imagestore.ErrNotFound) {
		t.Errorf("GetByID after delete: %v", err)
	}
	if err := store.SoftDelete(ctx, first.ID); !errors.Is(err, imagestore.ErrNotFound) {
		t.Errorf("second SoftDelete: %v", err)
	}
	list, _ = store.ListByLaag(ctx, laagID)
	if len(list) != 2 {
		t.Errorf("ListByLaag after delete len = %d, want 2", len(list))
	}
}
