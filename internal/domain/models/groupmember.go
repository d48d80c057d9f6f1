// internal/domain/models/groupmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupMember joins a profile to a group. Rows are never deleted: removal
// flips IsRemoved, and re-adding flips the most recent row back.
// At most one row per (group_id, group_member) has is_removed=false.
type GroupMember struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"group_id"`
	GroupMember primitive.ObjectID `bson:"group_member" json:"group_member"` // profile id
	IsRemoved   bool               `bson:"is_removed" json:"is_removed"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
