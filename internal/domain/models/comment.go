// internal/domain/models/comment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a note posted on a laag. Only its author may edit or delete it.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LaagID    primitive.ObjectID `bson:"laag_id" json:"laag_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Comment   string             `bson:"comment" json:"comment"`
	IsDeleted bool               `bson:"is_deleted" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
