// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"context"

	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsOwner reports whether the actor created the group.
func IsOwner(a authz.Actor, g models.Group) bool {
	return !a.ID.IsZero() && a.ID == g.Owner
}

// CanManageGroup reports whether the actor can rename the group, change its
// picture, delete it, or add and remove members:
// - Admins always can
// - The owner can
func CanManageGroup(a authz.Actor, g models.Group) bool {
	return a.Admin || IsOwner(a, g)
}

// CanViewGroup reports whether the actor can see the group and its laags:
// admins, the owner, and active members.
// Returns an error if the membership lookup fails, so callers can tell
// "not allowed" (false, nil) apart from a database error.
func CanViewGroup(ctx context.Context, db *mongo.Database, a authz.Actor, g models.Group) (bool, error) {
	if CanManageGroup(a, g) {
		return true, nil
	}
	if a.ID.IsZero() {
		return false, nil
	}
	return membershipstore.New(db).IsActiveMember(ctx, g.ID, a.ID)
}
