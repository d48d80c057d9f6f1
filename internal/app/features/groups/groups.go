// internal/app/features/groups/groups.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/laag/internal/app/policy/grouppolicy"
	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/inputval"
	"github.com/dalemusser/laag/internal/app/system/limits"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/app/system/uploads"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (h *Handler) pictureURL(g models.Group) string {
	if g.GroupPicture == "" || h.Blobs == nil {
		return ""
	}
	return h.Blobs.URL(g.GroupPicture)
}

func (h *Handler) toItem(ctx context.Context, a authz.Actor, g models.Group) (groupItem, error) {
	n, err := h.Members.CountActive(ctx, g.ID)
	if err != nil {
		return groupItem{}, err
	}
	return groupItem{
		ID:          g.ID.Hex(),
		GroupName:   g.GroupName,
		PictureURL:  h.pictureURL(g),
		Owner:       g.Owner.Hex(),
		NoMembers:   g.NoMembers,
		MemberCount: n,
		IsOwner:     grouppolicy.IsOwner(a, g),
		CanManage:   grouppolicy.CanManageGroup(a, g),
		CreatedAt:   g.CreatedAt,
	}, nil
}

// loadGroup resolves {id}, loads the group and runs the view policy.
// When manage is true the manage policy is required instead.
func (h *Handler) loadGroup(ctx context.Context, w http.ResponseWriter, r *http.Request, manage bool) (models.Group, authz.Actor, bool) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return models.Group{}, a, false
	}
	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad group id", err, "Invalid group ID.")
		return models.Group{}, a, false
	}

	g, err := h.Groups.GetByID(ctx, gid)
	if errors.Is(err, groupstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "group not found", err, "Group not found.")
		return models.Group{}, a, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading group", err, "A database error occurred.")
		return models.Group{}, a, false
	}

	if manage {
		if !grouppolicy.CanManageGroup(a, g) {
			h.ErrLog.LogForbidden(w, r, "group manage denied", "You don't have permission to manage this group.")
			return models.Group{}, a, false
		}
		return g, a, true
	}

	canView, err := grouppolicy.CanViewGroup(ctx, h.DB, a, g)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking group access", err, "A database error occurred.")
		return models.Group{}, a, false
	}
	if !canView {
		h.ErrLog.LogForbidden(w, r, "group view denied", "You don't have access to this group.")
		return models.Group{}, a, false
	}
	return g, a, true
}

// ServeGroupsList lists the caller's groups (owned or joined). Admins may
// pass ?all=1 to list every group.
// GET /groups
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		list []models.Group
		err  error
	)
	if a.Admin && r.URL.Query().Get("all") == "1" {
		list, err = h.Groups.ListAll(ctx)
	} else {
		list, err = h.Groups.ListForProfile(ctx, a.ID)
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "Failed to load groups.")
		return
	}

	out := make([]groupItem, 0, len(list))
	for _, g := range list {
		it, err := h.toItem(ctx, a, g)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "count members failed", err, "Failed to load groups.")
			return
		}
		out = append(out, it)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreateGroup creates a group owned by the caller, with optional
// initial members.
// POST /groups
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.ActorFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var in createInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode group create failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}
	memberIDs, err := httpx.ObjectIDs(in.MemberIDs)
	if err != nil {
		h.ErrLog.Invalid(w, r, inputval.Errors{"member_ids": "contains an invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if len(memberIDs) > 0 {
		if !h.membersExist(ctx, w, r, a.ID, memberIDs) {
			return
		}
	}

	g, err := h.Groups.Create(ctx, models.Group{GroupName: in.GroupName, Owner: a.ID}, memberIDs)
	if errors.Is(err, groupstore.ErrBlankName) {
		h.ErrLog.Invalid(w, r, inputval.Errors{"group_name": "is required"})
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create group failed", err, "Failed to create group.")
		return
	}
	h.Log.Info("group created", zap.String("group_id", g.ID.Hex()), zap.String("owner", a.ID.Hex()), zap.Int("no_members", g.NoMembers))

	it, err := h.toItem(ctx, a, g)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count members failed", err, "Group created but could not be loaded.")
		return
	}
	h.Audit.GroupCreated(r.Context(), r, a.ID, g.ID, g.GroupName)
	httpx.WriteJSON(w, http.StatusCreated, it)
}

// membersExist checks that every requested member is an active profile.
// The owner may appear in the list; the store drops it.
func (h *Handler) membersExist(ctx context.Context, w http.ResponseWriter, r *http.Request, owner primitive.ObjectID, ids []primitive.ObjectID) bool {
	want := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if id != owner {
			want[id] = struct{}{}
		}
	}
	if len(want) == 0 {
		return true
	}
	lookup := make([]primitive.ObjectID, 0, len(want))
	for id := range want {
		lookup = append(lookup, id)
	}
	found, err := h.Profiles.ListByIDs(ctx, lookup)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "lookup member profiles failed", err, "A database error occurred.")
		return false
	}
	if len(found) != len(want) {
		h.ErrLog.Invalid(w, r, inputval.Errors{"member_ids": "contains an unknown profile"})
		return false
	}
	return true
}

// ServeGroup returns one group with its active members.
// GET /groups/{id}
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, a, ok := h.loadGroup(ctx, w, r, false)
	if !ok {
		return
	}
	it, err := h.toItem(ctx, a, g)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count members failed", err, "Failed to load group.")
		return
	}
	members, err := h.Members.ListActive(ctx, g.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "Failed to load group.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, groupDetail{groupItem: it, Members: members})
}

// HandleEditGroup renames a group.
// POST /groups/{id}/edit
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	var in editInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode group edit failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, a, ok := h.loadGroup(ctx, w, r, true)
	if !ok {
		return
	}
	if err := h.Groups.UpdateInfo(ctx, g.ID, in.GroupName); err != nil {
		h.ErrLog.LogServerError(w, r, "update group failed", err, "Failed to save group.")
		return
	}
	g.GroupName = strings.TrimSpace(in.GroupName)

	it, err := h.toItem(ctx, a, g)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count members failed", err, "Failed to load group.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, it)
}

// HandleGroupPicture uploads a new group picture.
// POST /groups/{id}/picture (multipart field "picture")
func (h *Handler) HandleGroupPicture(w http.ResponseWriter, r *http.Request) {
	maxUpload := h.MaxUpload
	if maxUpload <= 0 {
		maxUpload = limits.MaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(1<<20))
	if err := r.ParseMultipartForm(limits.MaxMultipartMemory); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse picture form failed", err, "Invalid upload.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	g, a, ok := h.loadGroup(ctx, w, r, true)
	if !ok {
		return
	}
	files, err := uploads.FormImages(r, "picture")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "picture missing", err, "Choose an image to upload.")
		return
	}
	path, err := uploads.SaveImage(ctx, h.Blobs, files[0], "groups", maxUpload)
	if uploads.IsClientError(err) {
		h.ErrLog.LogBadRequest(w, r, "picture rejected", err, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "store picture failed", err, "Failed to upload picture.")
		return
	}
	if err := h.Groups.SetPicture(ctx, g.ID, path); err != nil {
		h.ErrLog.LogServerError(w, r, "save group picture failed", err, "Failed to upload picture.")
		return
	}
	g.GroupPicture = path

	it, err := h.toItem(ctx, a, g)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count members failed", err, "Failed to load group.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, it)
}

// HandleDeleteGroup soft-deletes a group.
// POST /groups/{id}/delete
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, a, ok := h.loadGroup(ctx, w, r, true)
	if !ok {
		return
	}
	if err := h.Groups.SoftDelete(ctx, g.ID); err != nil && !errors.Is(err, groupstore.ErrNotFound) {
		h.ErrLog.LogServerError(w, r, "delete group failed", err, "Failed to delete group.")
		return
	}
	h.Log.Info("group deleted", zap.String("group_id", g.ID.Hex()), zap.String("by", a.ID.Hex()))
	h.Audit.GroupDeleted(r.Context(), r, a.ID, g.ID)
	httpx.NoContent(w)
}
