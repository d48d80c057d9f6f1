package commentstore_test

import (
	"errors"
	"testing"

	commentstore "github.com/dalemusser/laag/internal/app/store/comments"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana := fx.CreateUser(ctx, "Ana", "ana@example.com")
	ben := fx.CreateUser(ctx, "Ben", "ben@example.com")
	laagID := primitive.NewObjectID()

	if _, err := store.Create(ctx, laagID, ana.ID, "   "); !errors.Is(err, commentstore.ErrBlank) {
		t.Errorf("blank comment: got %v, want ErrBlank", err)
	}
	first, err := store.Create(ctx, laagID, ana.ID, "first")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, laagID, ben.ID, "second"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := store.ListByLaag(ctx, laagID)
	if err != nil {
		t.Fatalf("ListByLaag: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != first.ID || list[0].Author.FullName != "Ana" || list[1].Author.FullName != "Ben" {
		t.Errorf("unexpected list %+v", list)
	}
	if list[0].Author.ID != ana.ID {
		t.Errorf("author id = %v, want %v", list[0].Author.ID, ana.ID)
	}
}

func TestStore_OnlyAuthorCanModify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := commentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := primitive.NewObjectID()
	other := primitive.NewObjectID()
	c, err := store.Create(ctx, primitive.NewObjectID(), author, "hello")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.UpdateText(ctx, c.ID, other, "hijack"); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("UpdateText by other: got %v, want ErrNotFound", err)
	}
	if err := store.SoftDelete(ctx, c.ID, other); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("SoftDelete by other: got %v, want ErrNotFound", err)
	}

	if err := store.UpdateText(ctx, c.ID, author, "edited"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	got, _ := store.GetByID(ctx, c.ID)
	if got.Comment != "edited" {
		t.Errorf("comment = %q, want edited", got.Comment)
	}

	if err := store.SoftDelete(ctx, c.ID, author); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := store.GetByID(ctx, c.ID); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("GetByID after delete: %v", err)
	}
}
