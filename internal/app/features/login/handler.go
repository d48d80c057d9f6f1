// internal/app/features/login/handler.go
package login

import (
	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/auditlog"
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/dalemusser/laag/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *apierrors.ErrorLogger
	Limiter    *ratelimit.LoginLimiter
	Profiles   *profilestore.Store

	// Audit records sign-in activity. Nil disables it.
	Audit *auditlog.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *apierrors.ErrorLogger, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		Limiter:    limiter,
		Profiles:   profilestore.New(db),
	}
}
