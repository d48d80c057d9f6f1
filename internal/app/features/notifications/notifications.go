// internal/app/features/notifications/notifications.go
package notifications

import (
	"context"
	"errors"
	"net/http"

	notificationstore "github.com/dalemusser/laag/internal/app/store/notifications"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList returns the caller's most recent notifications, newest first.
// GET /notifications
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Notes.ListForUser(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "Failed to load notifications.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

// ServeUnreadCount returns {"unread": n} for the badge.
// GET /notifications/unread-count
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.UnreadCount(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count unread failed", err, "Failed to load notifications.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"unread": n})
}

func (h *Handler) setRead(w http.ResponseWriter, r *http.Request, read bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	nid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad notification id", err, "Invalid notification ID.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if read {
		err = h.Notes.MarkRead(ctx, nid, uid)
	} else {
		err = h.Notes.MarkUnread(ctx, nid, uid)
	}
	if errors.Is(err, notificationstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "notification not found", err, "Notification not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update notification failed", err, "Failed to update notification.")
		return
	}
	httpx.NoContent(w)
}

// HandleRead marks one notification read.
// POST /notifications/{id}/read
func (h *Handler) HandleRead(w http.ResponseWriter, r *http.Request) { h.setRead(w, r, true) }

// HandleUnread marks one notification unread.
// POST /notifications/{id}/unread
func (h *Handler) HandleUnread(w http.ResponseWriter, r *http.Request) { h.setRead(w, r, false) }

// HandleReadAll marks every unread notification read.
// POST /notifications/read-all
func (h *Handler) HandleReadAll(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notes.MarkAllRead(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mark all read failed", err, "Failed to update notifications.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"updated": n})
}
