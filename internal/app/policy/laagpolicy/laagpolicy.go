// internal/app/policy/laagpolicy/laagpolicy.go
package laagpolicy

import (
	"context"
	"errors"

	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotOrganizer   = errors.New("only the organizer can change this laag")
	ErrTerminalStatus = errors.New("laag is already completed or cancelled")
	ErrBadTransition  = errors.New("laag can only be completed or cancelled")
)

// CanViewLaag reports whether the actor can see the laag: admins, anyone
// for public laags, and active members of the laag's group.
func CanViewLaag(ctx context.Context, db *mongo.Database, a authz.Actor, l models.Laag) (bool, error) {
	if a.Admin || l.Privacy == models.PrivacyPublic || a.ID == l.Organizer {
		return true, nil
	}
	if a.ID.IsZero() {
		return false, nil
	}
	return membershipstore.New(db).IsActiveMember(ctx, l.GroupID, a.ID)
}

// CanEditLaag reports whether the actor organizes the laag.
// Admins do not edit other people's laags.
func CanEditLaag(a authz.Actor, l models.Laag) bool {
	return !a.ID.IsZero() && a.ID == l.Organizer
}

// CanDeleteLaag reports whether the actor may remove the laag: the
// organizer, or an admin.
func CanDeleteLaag(a authz.Actor, l models.Laag) bool {
	return a.Admin || CanEditLaag(a, l)
}

// CanChangeStatus returns nil when the actor may move the laag to next.
func CanChangeStatus(a authz.Actor, l models.Laag, next models.LaagStatus) error {
	if !CanEditLaag(a, l) {
		return ErrNotOrganizer
	}
	if l.Status.IsTerminal() {
		return ErrTerminalStatus
	}
	if !l.Status.CanTransition(next) {
		return ErrBadTransition
	}
	return nil
}
