// internal/app/features/dashboard/profiles.go
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"

	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type profilesData struct {
	Profiles []models.Profile `json:"profiles"`
	Range    paging.Range     `json:"range"`
}

// ServeProfiles lists active profiles, filtered by ?q= on name.
// GET /admin/profiles
func (h *Handler) ServeProfiles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Profiles.ListActive(ctx, strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list profiles failed", err, "Failed to load profiles.")
		return
	}
	rows, rng := paging.Slice(list, paging.ParsePage(r), paging.ParseSize(r, paging.PageSize))
	httpx.WriteJSON(w, http.StatusOK, profilesData{Profiles: rows, Range: rng})
}

// HandleDeleteProfile soft-deletes a profile. Admins cannot delete
// themselves.
// POST /admin/profiles/{id}/delete
func (h *Handler) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	pid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad profile id", err, "Invalid profile ID.")
		return
	}
	if pid == uid {
		h.ErrLog.LogBadRequest(w, r, "admin tried to delete own profile", nil, "You can't delete your own profile.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Profiles.SoftDelete(ctx, pid); err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "profile not found", err, "Profile not found.")
			return
		}
		h.ErrLog.LogServerError(w, r, "delete profile failed", err, "Failed to delete profile.")
		return
	}
	h.Log.Info("profile deleted", zap.String("profile_id", pid.Hex()), zap.String("by", uid.Hex()))
	h.Audit.ProfileDeleted(r.Context(), r, uid, pid)
	httpx.NoContent(w)
}
