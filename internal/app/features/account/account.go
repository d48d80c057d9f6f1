// internal/app/features/account/account.go
package account

import (
	"context"
	"errors"
	"net/http"
	"strings"

	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/limits"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/app/system/uploads"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.uber.org/zap"
)

// accountData is the account settings payload.
type accountData struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type updateInput struct {
	FullName string `json:"full_name" validate:"notblank,max=120"`
}

func toAccount(p models.Profile) accountData {
	return accountData{
		ID:        p.ID.Hex(),
		FullName:  p.FullName,
		Email:     p.Email,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
	}
}

func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Profile, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return models.Profile{}, false
	}
	p, err := h.Profiles.GetByID(ctx, uid)
	if errors.Is(err, profilestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "account profile missing", err, "Profile not found.")
		return models.Profile{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "Failed to load your account.")
		return models.Profile{}, false
	}
	return p, true
}

// ServeAccount returns the signed-in profile.
// GET /account
func (h *Handler) ServeAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(p))
}

// HandleUpdate changes the display name.
// POST /account
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in updateInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode account update failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, ok := h.load(ctx, w, r)
	if !ok {
		return
	}
	if err := h.Profiles.UpdateAccount(ctx, p.ID, in.FullName, nil); err != nil {
		h.ErrLog.LogServerError(w, r, "update account failed", err, "Failed to save your account.")
		return
	}
	p.FullName = strings.TrimSpace(in.FullName)
	httpx.WriteJSON(w, http.StatusOK, toAccount(p))
}

// HandleAvatar stores an uploaded avatar image and points the profile at it.
// POST /account/avatar (multipart field "avatar")
func (h *Handler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	maxUpload := h.MaxUpload
	if maxUpload <= 0 {
		maxUpload = limits.MaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(1<<20))
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse avatar form failed", err, "Invalid upload.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, ok := h.load(ctx, w, r)
	if !ok {
		return
	}

	files, err := uploads.FormImages(r, "avatar")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "avatar missing", err, "Choose an image to upload.")
		return
	}
	path, err := uploads.SaveImage(ctx, h.Blobs, files[0], "avatars", maxUpload)
	if uploads.IsClientError(err) {
		h.ErrLog.LogBadRequest(w, r, "avatar rejected", err, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "store avatar failed", err, "Failed to upload your avatar.")
		return
	}

	url := h.Blobs.URL(path)
	if err := h.Profiles.UpdateAccount(ctx, p.ID, "", &url); err != nil {
		h.ErrLog.LogServerError(w, r, "save avatar url failed", err, "Failed to upload your avatar.")
		return
	}
	h.Log.Info("avatar updated", zap.String("user_id", p.ID.Hex()), zap.String("path", path))

	p.AvatarURL = url
	httpx.WriteJSON(w, http.StatusOK, toAccount(p))
}
