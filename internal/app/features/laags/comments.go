// internal/app/features/laags/comments.go
package laags

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/laag/internal/app/policy/commentpolicy"
	commentstore "github.com/dalemusser/laag/internal/app/store/comments"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/htmlsanitize"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/inputval"
	"github.com/dalemusser/laag/internal/app/system/limits"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/domain/models"
)

// readComment decodes and cleans a comment body. Markup is stripped.
func (h *Handler) readComment(w http.ResponseWriter, r *http.Request) (string, bool) {
	var in commentInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode comment failed", err, "Invalid request body.")
		return "", false
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return "", false
	}
	text := htmlsanitize.StripTags(in.Comment)
	if text == "" {
		h.ErrLog.Invalid(w, r, inputval.Errors{"comment": "is required"})
		return "", false
	}
	if len(text) > limits.MaxCommentLength {
		h.ErrLog.Invalid(w, r, inputval.Errors{"comment": "is too long"})
		return "", false
	}
	return text, true
}

// loadComment resolves {commentID} within the laag and checks the caller
// wrote it.
func (h *Handler) loadComment(ctx context.Context, w http.ResponseWriter, r *http.Request, a authz.Actor, l models.Laag) (models.Comment, bool) {
	cid, ok := h.urlID(w, r, "commentID", "comment")
	if !ok {
		return models.Comment{}, false
	}
	c, err := h.Comments.GetByID(ctx, cid)
	if errors.Is(err, commentstore.ErrNotFound) || (err == nil && c.LaagID != l.ID) {
		h.ErrLog.LogNotFound(w, r, "comment not found", err, "Comment not found.")
		return models.Comment{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading comment", err, "A database error occurred.")
		return models.Comment{}, false
	}
	if !commentpolicy.CanModifyComment(a, c) {
		h.ErrLog.LogForbidden(w, r, "comment modify denied", "You can only change your own comments.")
		return models.Comment{}, false
	}
	return c, true
}

// ServeComments lists a laag's comments, oldest first.
// GET /groups/{id}/laags/{laagID}/comments
func (h *Handler) ServeComments(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	items, err := h.Comments.ListByLaag(ctx, l.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list comments failed", err, "Failed to load comments.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

// HandleAddComment posts a comment on a laag the caller can see.
// POST /groups/{id}/laags/{laagID}/comments
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	text, ok := h.readComment(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	c, err := h.Comments.Create(ctx, l.ID, a.ID, text)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create comment failed", err, "Failed to post comment.")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

// HandleEditComment rewrites the caller's own comment.
// POST /groups/{id}/laags/{laagID}/comments/{commentID}/edit
func (h *Handler) HandleEditComment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	text, ok := h.readComment(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	c, ok := h.loadComment(ctx, w, r, a, l)
	if !ok {
		return
	}
	if err := h.Comments.UpdateText(ctx, c.ID, a.ID, text); err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "comment vanished", err, "Comment not found.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update comment failed", err, "Failed to save comment.")
		return
	}
	updated, err := h.Comments.GetByID(ctx, c.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "reload comment failed", err, "A database error occurred.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated)
}

// HandleDeleteComment removes the caller's own comment.
// POST /groups/{id}/laags/{laagID}/comments/{commentID}/delete
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	c, ok := h.loadComment(ctx, w, r, a, l)
	if !ok {
		return
	}
	if err := h.Comments.SoftDelete(ctx, c.ID, a.ID); err != nil && !errors.Is(err, commentstore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "delete comment failed", err, "Failed to delete comment.")
		return
	}
	httpx.NoContent(w)
}
