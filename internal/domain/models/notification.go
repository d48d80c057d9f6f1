// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LaagNotification is created once whenever a laag is cancelled or completed.
type LaagNotification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LaagID     primitive.ObjectID `bson:"laag_id" json:"laag_id"`
	GroupID    primitive.ObjectID `bson:"group_id" json:"group_id"`
	LaagStatus LaagStatus         `bson:"laag_status" json:"laag_status"`
	IsDeleted  bool               `bson:"is_deleted" json:"-"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// LaagNotificationRead is the per-recipient copy of a notification.
// One row is fanned out per active attendee when the notification is created.
type LaagNotificationRead struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NotificationID primitive.ObjectID `bson:"notification_id" json:"notification_id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	IsRead         bool               `bson:"is_read" json:"is_read"`
	ReadAt         *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
