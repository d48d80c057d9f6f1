// internal/app/features/groups/types.go
package groups

import (
	"time"

	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/domain/models"
)

// groupItem is the JSON shape for a group in lists and detail views.
// NoMembers is the stored creation-time count; MemberCount is live.
type groupItem struct {
	ID          string    `json:"id"`
	GroupName   string    `json:"group_name"`
	PictureURL  string    `json:"picture_url,omitempty"`
	Owner       string    `json:"owner"`
	NoMembers   int       `json:"no_members"`
	MemberCount int64     `json:"member_count"`
	IsOwner     bool      `json:"is_owner"`
	CanManage   bool      `json:"can_manage"`
	CreatedAt   time.Time `json:"created_at"`
}

type groupDetail struct {
	groupItem
	Members []membershipstore.Member `json:"members"`
}

type membersData struct {
	Members   []membershipstore.Member `json:"members"`
	Available []models.ProfileSummary  `json:"available,omitempty"`
	Query     string                   `json:"q,omitempty"`
}

type createInput struct {
	GroupName string   `json:"group_name" validate:"notblank,max=120"`
	MemberIDs []string `json:"member_ids" validate:"omitempty,dive,objectid"`
}

type editInput struct {
	GroupName string `json:"group_name" validate:"notblank,max=120"`
}

type addMemberInput struct {
	ProfileID string `json:"profile_id" validate:"required,objectid"`
}

type removeMemberInput struct {
	MembershipID string `json:"membership_id" validate:"required,objectid"`
}
