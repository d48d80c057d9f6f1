// internal/app/features/login/login.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/dalemusser/laag/internal/app/system/authutil"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/inputval"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type signupInput struct {
	FullName string `json:"full_name" validate:"notblank,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// meResponse is returned by signup, login, and GET /me.
type meResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func toMe(p models.Profile) meResponse {
	return meResponse{
		ID:        p.ID.Hex(),
		FullName:  p.FullName,
		Email:     p.Email,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
	}
}

func sessionUser(p models.Profile) *auth.SessionUser {
	return &auth.SessionUser{ID: p.ID.Hex(), Name: p.FullName, Email: p.Email, Role: p.Role}
}

// HandleSignup creates a profile with the user role and signs it in.
// POST /signup
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in signupInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode signup failed", err, "Invalid request body.")
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		h.ErrLog.Invalid(w, r, inputval.Errors{"password": err.Error()})
		return
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Failed to create account.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Create(ctx, models.Profile{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if errors.Is(err, profilestore.ErrDuplicateEmail) {
		h.ErrLog.LogConflict(w, r, "signup with existing email", err, "An account with this email already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create profile failed", err, "Failed to create account.")
		return
	}

	if err := h.SessionMgr.Login(w, r, sessionUser(p)); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Account created, but sign-in failed.")
		return
	}
	h.Log.Info("profile signed up", zap.String("user_id", p.ID.Hex()))
	h.Audit.Signup(r.Context(), r, p.ID, p.Email)
	httpx.WriteJSON(w, http.StatusCreated, toMe(p))
}

// HandleLogin checks email and password and starts a session.
// POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.Email); !ok {
			h.Log.Warn("login rate limited", zap.String("email", in.Email))
			h.Audit.LoginRateLimited(r.Context(), r, in.Email)
			httpx.WriteError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, profilestore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "Sign-in failed. Please try again.")
		return
	}
	if err != nil {
		h.Audit.LoginFailed(r.Context(), r, primitive.NilObjectID, in.Email, "profile not found")
		httpx.WriteError(w, http.StatusUnauthorized, "Incorrect email or password.")
		return
	}
	if !authutil.CheckPassword(in.Password, p.PasswordHash) {
		h.Audit.LoginFailed(r.Context(), r, p.ID, in.Email, "wrong password")
		httpx.WriteError(w, http.StatusUnauthorized, "Incorrect email or password.")
		return
	}

	if err := h.SessionMgr.Login(w, r, sessionUser(p)); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Sign-in failed. Please try again.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.Log.Info("profile signed in", zap.String("user_id", p.ID.Hex()))
	h.Audit.LoginSuccess(r.Context(), r, p.ID, p.Email)
	httpx.WriteJSON(w, http.StatusOK, toMe(p))
}

// ServeMe returns the signed-in profile.
// GET /me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	uid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	p, err := h.Profiles.GetByID(ctx, uid)
	if errors.Is(err, profilestore.ErrNotFound) {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "Failed to load your profile.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toMe(p))
}
