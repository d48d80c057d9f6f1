// internal/app/features/notifications/handler.go
package notifications

import (
	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	notificationstore "github.com/dalemusser/laag/internal/app/store/notifications"
	"github.com/dalemusser/laag/internal/app/system/realtime"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the signed-in profile's notifications and the live
// event stream.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *apierrors.ErrorLogger
	Broker realtime.Broker
	Notes  *notificationstore.Store
}

func NewHandler(db *mongo.Database, broker realtime.Broker, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Broker: broker,
		Notes:  notificationstore.New(db),
	}
}
