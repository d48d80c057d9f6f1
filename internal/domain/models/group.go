// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a set of profiles who plan laags together.
//
// NOTE:
//   - Membership is not embedded; it lives in the group_members collection.
//   - Owner is set at creation and never reassigned.
//   - NoMembers is written once at creation (members + owner) and is not
//     maintained afterwards. Use the membership store for a live count.
type Group struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	GroupName    string             `bson:"group_name" json:"group_name"`
	GroupNameCI  string             `bson:"group_name_ci" json:"-"`
	GroupPicture string             `bson:"group_picture,omitempty" json:"group_picture,omitempty"`
	NoMembers    int                `bson:"no_members" json:"no_members"`
	Owner        primitive.ObjectID `bson:"owner" json:"owner"`
	IsDeleted    bool               `bson:"is_deleted" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
