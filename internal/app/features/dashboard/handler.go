// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	apierrors "github.com/dalemusser/laag/internal/app/features/errors"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/auditlog"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
	Profiles *profilestore.Store

	// LeaderboardPageSize is how many entries one "show more" step adds.
	LeaderboardPageSize int

	// Audit records security-relevant actions. Nil disables it.
	Audit *auditlog.Logger
}

func NewHandler(db *mongo.Database, leaderboardPageSize int, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if leaderboardPageSize < 1 {
		leaderboardPageSize = paging.PageSize
	}
	return &Handler{
		DB:                  db,
		Log:                 logger,
		ErrLog:              errLog,
		Profiles:            profilestore.New(db),
		LeaderboardPageSize: leaderboardPageSize,
	}
}

// ServeDashboard dispatches to the role-specific view.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	switch role {
	case models.RoleAdmin:
		h.ServeAdmin(w, r)
	default:
		h.ServeUser(w, r)
	}
}
