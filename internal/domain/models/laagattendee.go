// internal/domain/models/laagattendee.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LaagAttendee marks a profile as participating in a laag.
// Same soft-remove/re-add pattern as GroupMember.
type LaagAttendee struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LaagID     primitive.ObjectID `bson:"laag_id" json:"laag_id"`
	AttendeeID primitive.ObjectID `bson:"attendee_id" json:"attendee_id"`
	IsRemoved  bool               `bson:"is_removed" json:"is_removed"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
