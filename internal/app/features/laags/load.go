// internal/app/features/laags/load.go
package laags

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/laag/internal/app/policy/grouppolicy"
	"github.com/dalemusser/laag/internal/app/policy/laagpolicy"
	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/inputval"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
	}
	return a, ok
}

func (h *Handler) urlID(w http.ResponseWriter, r *http.Request, param, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad "+what+" id", err, "Invalid "+what+" ID.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadGroup resolves {id}. Group-scoped reads require group membership.
func (h *Handler) loadGroup(ctx context.Context, w http.ResponseWriter, r *http.Request, a authz.Actor) (models.Group, bool) {
	gid, ok := h.urlID(w, r, "id", "group")
	if !ok {
		return models.Group{}, false
	}
	g, err := h.Groups.GetByID(ctx, gid)
	if errors.Is(err, groupstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "group not found", err, "Group not found.")
		return models.Group{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading group", err, "A database error occurred.")
		return models.Group{}, false
	}
	canView, err := grouppolicy.CanViewGroup(ctx, h.DB, a, g)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking group access", err, "A database error occurred.")
		return models.Group{}, false
	}
	if !canView {
		h.ErrLog.LogForbidden(w, r, "group view denied", "You don't have access to this group.")
		return models.Group{}, false
	}
	return g, true
}

// loadLaag resolves {id} and {laagID}, checks the laag belongs to the
// group and runs the view policy. Public laags are visible to anyone
// signed in, so group membership is not required here.
func (h *Handler) loadLaag(ctx context.Context, w http.ResponseWriter, r *http.Request, a authz.Actor) (models.Laag, bool) {
	gid, ok := h.urlID(w, r, "id", "group")
	if !ok {
		return models.Laag{}, false
	}
	lid, ok := h.urlID(w, r, "laagID", "laag")
	if !ok {
		return models.Laag{}, false
	}

	if _, err := h.Groups.GetByID(ctx, gid); err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "group not found", err, "Group not found.")
		} else {
			h.ErrLog.LogServerError(w, r, "database error loading group", err, "A database error occurred.")
		}
		return models.Laag{}, false
	}

	l, err := h.Laags.GetByID(ctx, lid)
	if errors.Is(err, laagstore.ErrNotFound) || (err == nil && l.GroupID != gid) {
		h.ErrLog.LogNotFound(w, r, "laag not found", err, "Laag not found.")
		return models.Laag{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading laag", err, "A database error occurred.")
		return models.Laag{}, false
	}

	canView, err := laagpolicy.CanViewLaag(ctx, h.DB, a, l)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking laag access", err, "A database error occurred.")
		return models.Laag{}, false
	}
	if !canView {
		h.ErrLog.LogForbidden(w, r, "laag view denied", "You don't have access to this laag.")
		return models.Laag{}, false
	}
	return l, true
}

// checkAttendees parses ids and verifies each is an active member of the
// group. A nil input stays nil.
func (h *Handler) checkAttendees(ctx context.Context, w http.ResponseWriter, r *http.Request, groupID primitive.ObjectID, hexes []string) ([]primitive.ObjectID, bool) {
	if hexes == nil {
		return nil, true
	}
	ids, err := httpx.ObjectIDs(hexes)
	if err != nil {
		h.ErrLog.Invalid(w, r, inputval.Errors{"attendee_ids": "contains an invalid id"})
		return nil, false
	}
	if len(ids) == 0 {
		return ids, true
	}
	members, err := h.Members.ActiveProfileIDs(ctx, groupID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list group members failed", err, "A database error occurred.")
		return nil, false
	}
	set := make(map[primitive.ObjectID]bool, len(members))
	for _, id := range members {
		set[id] = true
	}
	for _, id := range ids {
		if !set[id] {
			h.ErrLog.Invalid(w, r, inputval.Errors{"attendee_ids": "attendees must be members of the group"})
			return nil, false
		}
	}
	return ids, true
}

// writeStoreError maps store and policy sentinels to responses.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	switch {
	case errors.Is(err, laagstore.ErrNotFound):
		h.ErrLog.LogNotFound(w, r, logMsg, err, "Laag not found.")
	case errors.Is(err, laagpolicy.ErrNotOrganizer):
		h.ErrLog.LogForbidden(w, r, logMsg, "Only the organizer can change this laag.")
	case errors.Is(err, laagpolicy.ErrTerminalStatus),
		errors.Is(err, laagstore.ErrNotPlanning):
		h.ErrLog.LogConflict(w, r, logMsg, err, "This laag is already completed or cancelled.")
	case errors.Is(err, laagpolicy.ErrBadTransition),
		errors.Is(err, laagstore.ErrBadStatus):
		h.ErrLog.LogConflict(w, r, logMsg, err, "That status change is not allowed.")
	default:
		h.ErrLog.LogServerError(w, r, logMsg, err, "A database error occurred.")
	}
}

func (h *Handler) item(a authz.Actor, l models.Laag) laagItem {
	return laagItem{
		Laag:      l,
		CanEdit:   laagpolicy.CanEditLaag(a, l) && l.Status == models.StatusPlanning,
		CanDelete: laagpolicy.CanDeleteLaag(a, l),
	}
}

func (h *Handler) items(a authz.Actor, list []models.Laag) []laagItem {
	out := make([]laagItem, 0, len(list))
	for _, l := range list {
		out = append(out, h.item(a, l))
	}
	return out
}

func (h *Handler) withURLs(imgs []models.LaagImage) []models.LaagImage {
	if h.Blobs == nil {
		return imgs
	}
	for i := range imgs {
		imgs[i].URL = h.Blobs.URL(imgs[i].Image)
	}
	return imgs
}
