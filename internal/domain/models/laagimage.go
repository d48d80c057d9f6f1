// internal/domain/models/laagimage.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LaagImage points at an uploaded photo in blob storage.
// Deleting flips IsDeleted; the blob itself is kept.
type LaagImage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LaagID     primitive.ObjectID `bson:"laag_id" json:"laag_id"`
	Image      string             `bson:"image" json:"image"` // storage path
	URL        string             `bson:"-" json:"url,omitempty"`
	UploadedBy primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
	IsDeleted  bool               `bson:"is_deleted" json:"-"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
