package bootstrap

import (
	"testing"

	"github.com/dalemusser/laag/internal/app/system/authutil"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/laag/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{LaagMongoDatabase: db}

	if err := ensureAdmin(ctx, deps, "Admin@Test.com", "s3cretpass", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var p models.Profile
	if err := db.Collection("profiles").FindOne(ctx, bson.M{"email_ci": "admin@test.com"}).Decode(&p); err != nil {
		t.Fatalf("failed to find created profile: %v", err)
	}
	if p.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, p.Role)
	}
	if !authutil.CheckPassword("s3cretpass", p.PasswordHash) {
		t.Error("stored hash does not match the admin password")
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	existing := fx.CreateUser(ctx, "Existing User", "existing@test.com")

	deps := DBDeps{LaagMongoDatabase: db}

	// No password needed when the profile already exists.
	if err := ensureAdmin(ctx, deps, "existing@test.com", "", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var p models.Profile
	if err := db.Collection("profiles").FindOne(ctx, bson.M{"_id": existing.ID}).Decode(&p); err != nil {
		t.Fatalf("failed to find profile: %v", err)
	}
	if p.Role != models.RoleAdmin {
		t.Errorf("expected role %q after promotion, got %q", models.RoleAdmin, p.Role)
	}
}

func TestEnsureAdmin_MissingWithoutPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{LaagMongoDatabase: db}

	if err := ensureAdmin(ctx, deps, "nobody@test.com", "", testLogger()); err != nil {
		t.Fatalf("ensureAdmin should skip, got %v", err)
	}
	n, err := db.Collection("profiles").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no profiles, got %d", n)
	}
}

func TestEnsureAdmin_WeakPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{LaagMongoDatabase: db}

	if err := ensureAdmin(ctx, deps, "admin@test.com", "short", testLogger()); err == nil {
		t.Fatal("expected an error for a weak admin password")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		SessionKey:       "0123456789abcdef0123456789abcdef",
		StorageType:      "local",
		StorageLocalPath: "./uploads",
		StorageLocalURL:  "/files",
		UploadMaxBytes:   1 << 20,
	}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{"valid local", func(c *AppConfig) {}, false},
		{"empty session key", func(c *AppConfig) { c.SessionKey = "  " }, true},
		{"local without path", func(c *AppConfig) { c.StorageLocalPath = "" }, true},
		{"s3 without bucket", func(c *AppConfig) { c.StorageType = "s3"; c.StorageS3Region = "us-east-1" }, true},
		{"s3 complete", func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Region = "us-east-1"
			c.StorageS3Bucket = "laag"
		}, false},
		{"unknown storage", func(c *AppConfig) { c.StorageType = "ftp" }, true},
		{"zero upload limit", func(c *AppConfig) { c.UploadMaxBytes = 0 }, true},
		{"audit db only", func(c *AppConfig) { c.AuditLogAuth = "db" }, false},
		{"bad audit setting", func(c *AppConfig) { c.AuditLogLaag = "everything" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
