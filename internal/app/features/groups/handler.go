// internal/app/features/groups/handler.go
package groups

import (
	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the groups feature.
// The list, detail, picture and membership handlers all hang off it.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *apierrors.ErrorLogger
	Blobs     storage.Store
	MaxUpload int64

	Groups   *groupstore.Store
	Members  *membershipstore.Store
	Profiles *profilestore.Store

	// Audit records security-relevant actions. Nil disables it.
	Audit *auditlog.Logger
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function, where the application's
// DB, blob store and logger are already initialized.
func NewHandler(db *mongo.Database, blobs storage.Store, maxUpload int64, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Blobs:     blobs,
		MaxUpload: maxUpload,
		Groups:    groupstore.New(db),
		Members:   membershipstore.New(db),
		Profiles:  profilestore.New(db),
	}
}
