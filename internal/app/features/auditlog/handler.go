// internal/app/features/auditlog/handler.go
package auditlog

import (
	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	auditstore "github.com/dalemusser/laag/internal/app/store/audit"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	Events   *auditstore.Store
	Profiles *profilestore.Store
}

// NewHandler constructs an audit log feature handler bound to
// the given Mongo database and logger.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		ErrLog:   errLog,
		Events:   auditstore.New(db),
		Profiles: profilestore.New(db),
	}
}
