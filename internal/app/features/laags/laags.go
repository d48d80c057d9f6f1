// internal/app/features/laags/laags.go
package laags

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/laag/internal/app/policy/laagpolicy"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/laagfilter"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/app/system/txn"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.uber.org/zap"
)

func (h *Handler) page(w http.ResponseWriter, r *http.Request, a authz.Actor, list []models.Laag) {
	f, err := laagfilter.Parse(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad laag filter", err, err.Error())
		return
	}
	rows, rng := paging.Slice(laagfilter.Apply(list, f), paging.ParsePage(r), paging.ParseSize(r, h.PageSize))
	httpx.WriteJSON(w, http.StatusOK, listData{Laags: h.items(a, rows), Range: rng})
}

// ServeList lists a group's laags with search, filters, sort and paging.
// GET /groups/{id}/laags
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, r, a)
	if !ok {
		return
	}
	list, err := h.Laags.ListByGroup(ctx, g.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list group laags failed", err, "Failed to load laags.")
		return
	}
	h.page(w, r, a, list)
}

// ServeFeed lists public laags and laags of the caller's groups.
// GET /feed
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Laags.ListFeed(ctx, a.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list feed failed", err, "Failed to load the feed.")
		return
	}
	h.page(w, r, a, list)
}

// HandleCreate plans a new laag in the group, organized by the caller.
// POST /groups/{id}/laags
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in laagInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode laag create failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, r, a)
	if !ok {
		return
	}
	isMember, err := h.Members.IsActiveMember(ctx, g.ID, a.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership check failed", err, "A database error occurred.")
		return
	}
	if !isMember {
		h.ErrLog.LogForbidden(w, r, "laag create by non-member", "Only group members can plan laags.")
		return
	}
	attendees, ok := h.checkAttendees(ctx, w, r, g.ID, in.AttendeeIDs)
	if !ok {
		return
	}

	d := in.details()
	l, err := h.Laags.Create(ctx, models.Laag{
		What:          d.What,
		Where:         d.Where,
		Why:           d.Why,
		Type:          d.Type,
		EstimatedCost: d.EstimatedCost,
		WhenStart:     d.WhenStart,
		WhenEnd:       d.WhenEnd,
		Privacy:       d.Privacy,
		Organizer:     a.ID,
		GroupID:       g.ID,
	}, attendees)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create laag failed", err, "Failed to create laag.")
		return
	}
	h.Log.Info("laag created",
		zap.String("laag_id", l.ID.Hex()),
		zap.String("group_id", g.ID.Hex()),
		zap.String("organizer", a.ID.Hex()),
		zap.Int("attendees", len(attendees)))
	h.Audit.LaagCreated(r.Context(), r, a.ID, g.ID, l.ID)
	httpx.WriteJSON(w, http.StatusCreated, h.item(a, l))
}

// ServeLaag returns a laag with attendees, photos and comments.
// GET /groups/{id}/laags/{laagID}
func (h *Handler) ServeLaag(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	attendees, err := h.Attendees.ListActive(ctx, l.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list attendees failed", err, "Failed to load laag.")
		return
	}
	imgs, err := h.Images.ListByLaag(ctx, l.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list images failed", err, "Failed to load laag.")
		return
	}
	comments, err := h.Comments.ListByLaag(ctx, l.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list comments failed", err, "Failed to load laag.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, laagDetail{
		laagItem:  h.item(a, l),
		Attendees: attendees,
		Images:    h.withURLs(imgs),
		Comments:  comments,
	})
}

// HandleEdit rewrites the details of a planning laag and, when
// attendee_ids is present, reconciles the attendee list.
// POST /groups/{id}/laags/{laagID}/edit
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in laagInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode laag edit failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	if !laagpolicy.CanEditLaag(a, l) {
		h.ErrLog.LogForbidden(w, r, "laag edit denied", "Only the organizer can edit this laag.")
		return
	}
	if l.Status.IsTerminal() {
		h.ErrLog.LogConflict(w, r, "laag edit after terminal status", laagstore.ErrNotPlanning, "This laag is already completed or cancelled.")
		return
	}
	attendees, ok := h.checkAttendees(ctx, w, r, l.GroupID, in.AttendeeIDs)
	if !ok {
		return
	}

	err := txn.Run(ctx, h.DB.Client(), h.Log, func(ctx context.Context) error {
		if err := h.Laags.UpdateDetails(ctx, l.ID, in.details()); err != nil {
			return err
		}
		if attendees == nil {
			return nil
		}
		_, err := h.Attendees.Reconcile(ctx, l.ID, attendees)
		return err
	})
	if err != nil {
		h.writeStoreError(w, r, "update laag failed", err)
		return
	}

	updated, err := h.Laags.GetByID(ctx, l.ID)
	if err != nil {
		h.writeStoreError(w, r, "reload laag failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.item(a, updated))
}

// HandleDelete soft-deletes a laag. Organizer or admin.
// POST /groups/{id}/laags/{laagID}/delete
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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
	if !laagpolicy.CanDeleteLaag(a, l) {
		h.ErrLog.LogForbidden(w, r, "laag delete denied", "You can't delete this laag.")
		return
	}
	if err := h.Laags.SoftDelete(ctx, l.ID); err != nil && !errors.Is(err, laagstore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "delete laag failed", err, "Failed to delete laag.")
		return
	}
	h.Log.Info("laag deleted", zap.String("laag_id", l.ID.Hex()), zap.String("by", a.ID.Hex()))
	h.Audit.LaagDeleted(r.Context(), r, a.ID, l.GroupID, l.ID)
	httpx.NoContent(w)
}
