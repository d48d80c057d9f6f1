// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/laag/internal/app/system/auditlog"
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// HandleLogout handles POST /logout. The cookie is expired even when the
// incoming session could not be decoded.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("profile signed out", zap.String("user_id", u.ID))
		if id, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			h.Audit.Logout(r.Context(), r, id)
		}
	}
	if err := h.SessionMgr.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, "Sign-out failed.")
		return
	}
	httpx.NoContent(w)
}
