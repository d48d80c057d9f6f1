// internal/app/features/account/handler.go
package account

import (
	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in profile's account settings.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	ErrLog    *apierrors.ErrorLogger
	Blobs     storage.Store
	MaxUpload int64
	Profiles  *profilestore.Store
}

// NewHandler constructs a Handler bound to the given Mongo database, blob store and logger.
func NewHandler(db *mongo.Database, blobs storage.Store, maxUpload int64, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:        db,
		Log:       logger,
		ErrLog:    errLog,
		Blobs:     blobs,
		MaxUpload: maxUpload,
		Profiles:  profilestore.New(db),
	}
}
