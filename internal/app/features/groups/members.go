// internal/app/features/groups/members.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/laag/internal/app/policy/grouppolicy"
	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeMembers lists active members. Managers also get the profiles that
// could be added, filtered by ?q= on name.
// GET /groups/{id}/members
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, a, ok := h.loadGroup(ctx, w, r, false)
	if !ok {
		return
	}
	members, err := h.Members.ListActive(ctx, g.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "Failed to load members.")
		return
	}

	data := membersData{Members: members}
	if grouppolicy.CanManageGroup(a, g) {
		data.Query = strings.TrimSpace(r.URL.Query().Get("q"))
		data.Available, err = h.Profiles.ListAvailableForGroup(ctx, g.ID, data.Query)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list available profiles failed", err, "Failed to load members.")
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, data)
}

// HandleAddMember adds an active, non-admin profile to the group.
// POST /groups/{id}/members/add
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	var in addMemberInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode add member failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}
	pid, _ := primitive.ObjectIDFromHex(in.ProfileID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, a, ok := h.loadGroup(ctx, w, r, true)
	if !ok {
		return
	}

	p, err := h.Profiles.GetByID(ctx, pid)
	if errors.Is(err, profilestore.ErrNotFound) {
		h.ErrLog.LogBadRequest(w, r, "add member: unknown profile", err, "Profile not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading profile", err, "A database error occurred.")
		return
	}
	if p.Role == models.RoleAdmin {
		h.ErrLog.LogBadRequest(w, r, "add member: admin profile", nil, "Admins cannot be added to groups.")
		return
	}

	row, err := h.Members.Add(ctx, g.ID, p.ID)
	if errors.Is(err, membershipstore.ErrAlreadyMember) {
		h.ErrLog.LogConflict(w, r, "add member: already a member", err, "That profile is already a member.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "add member failed", err, "Failed to add member.")
		return
	}
	h.Log.Info("member added",
		zap.String("group_id", g.ID.Hex()),
		zap.String("profile_id", p.ID.Hex()),
		zap.String("by", a.ID.Hex()))
	h.Audit.MemberAdded(r.Context(), r, a.ID, p.ID, g.ID)

	httpx.WriteJSON(w, http.StatusCreated, membershipstore.Member{
		MembershipID: row.ID,
		Profile:      models.ProfileSummary{ID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL},
		JoinedAt:     row.UpdatedAt,
	})
}

// HandleRemoveMember removes a membership row. Managers may remove anyone
// but the owner; a member may remove their own row to leave the group.
// POST /groups/{id}/members/remove
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	var in removeMemberInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode remove member failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}
	rowID, _ := primitive.ObjectIDFromHex(in.MembershipID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, a, ok := h.loadGroup(ctx, w, r, false)
	if !ok {
		return
	}

	row, err := h.Members.Get(ctx, rowID)
	if errors.Is(err, membershipstore.ErrNotFound) || (err == nil && (row.GroupID != g.ID || row.IsRemoved)) {
		h.ErrLog.LogNotFound(w, r, "remove member: no such membership", err, "Membership not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading membership", err, "A database error occurred.")
		return
	}
	if row.GroupMember == g.Owner {
		h.ErrLog.LogBadRequest(w, r, "remove member: owner", nil, "The group owner cannot be removed.")
		return
	}
	if !grouppolicy.CanManageGroup(a, g) && row.GroupMember != a.ID {
		h.ErrLog.LogForbidden(w, r, "remove member denied", "You don't have permission to manage this group.")
		return
	}

	if err := h.Members.Remove(ctx, row.ID); err != nil {
		if errors.Is(err, membershipstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "remove member: already removed", err, "Membership not found.")
			return
		}
		h.ErrLog.LogServerError(w, r, "remove member failed", err, "Failed to remove member.")
		return
	}
	h.Log.Info("member removed",
		zap.String("group_id", g.ID.Hex()),
		zap.String("profile_id", row.GroupMember.Hex()),
		zap.String("by", a.ID.Hex()))
	h.Audit.MemberRemoved(r.Context(), r, a.ID, row.GroupMember, g.ID)
	httpx.NoContent(w)
}
