package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dalemusser/waffle/pantry/storage"
)

func TestNewBlobStore_Local(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	cfg := AppConfig{StorageType: "local", StorageLocalPath: root, StorageLocalURL: "/files/"}

	store, err := newBlobStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newBlobStore: %v", err)
	}
	if _, ok := store.(*storage.Local); !ok {
		t.Fatalf("store = %T, want *storage.Local", store)
	}
	if got := store.URL("avatars/2024/01/x-me.png"); got != "/files/avatars/2024/01/x-me.png" {
		t.Errorf("URL = %q", got)
	}
}

func TestNewBlobStore_S3RequiresBucket(t *testing.T) {
	cfg := AppConfig{StorageType: "s3", StorageS3Region: "eu-west-1"}
	if _, err := newBlobStore(context.Background(), cfg); err == nil {
		t.Error("expected error for missing bucket")
	}
}
