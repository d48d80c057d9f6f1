// internal/app/policy/commentpolicy/commentpolicy.go
package commentpolicy

import (
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/domain/models"
)

// CanModifyComment reports whether the actor wrote the comment.
// Admins get no exception.
func CanModifyComment(a authz.Actor, c models.Comment) bool {
	return !a.ID.IsZero() && a.ID == c.UserID
}
