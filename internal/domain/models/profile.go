// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Profile is a signed-up person. Created at signup, edited through account
// settings, and soft-deleted by an admin.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	AvatarURL    string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Role         string             `bson:"role" json:"role"` // admin | user
	IsDeleted    bool               `bson:"is_deleted" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }

// ProfileSummary is the slim projection embedded in list responses.
type ProfileSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FullName  string             `bson:"full_name" json:"full_name"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
}
