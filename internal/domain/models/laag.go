// internal/domain/models/laag.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LaagStatus is the lifecycle state of a laag.
type LaagStatus string

const (
	StatusPlanning  LaagStatus = "Planning"
	StatusCompleted LaagStatus = "Completed"
	StatusCancelled LaagStatus = "Cancelled"
)

// AllStatuses lists every valid status in display order.
var AllStatuses = []LaagStatus{StatusPlanning, StatusCompleted, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s LaagStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s LaagStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether s may move to next.
// Only Planning→Completed and Planning→Cancelled exist.
func (s LaagStatus) CanTransition(next LaagStatus) bool {
	return s == StatusPlanning && (next == StatusCompleted || next == StatusCancelled)
}

// Privacy controls who can see a laag outside its group.
type Privacy string

const (
	PrivacyPublic    Privacy = "public"
	PrivacyGroupOnly Privacy = "group-only"
)

// Valid reports whether p is a known privacy setting.
func (p Privacy) Valid() bool {
	return p == PrivacyPublic || p == PrivacyGroupOnly
}

// Laag is a planned or completed group activity.
//
// NOTE:
//   - ActualCost and FunMeter stay nil until the laag is completed.
//   - Status is written only through the transition path; edits never touch it.
type Laag struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	What          string             `bson:"what" json:"what"`
	Where         string             `bson:"where" json:"where"`
	Why           string             `bson:"why" json:"why"`
	Type          string             `bson:"type,omitempty" json:"type,omitempty"`
	EstimatedCost float64            `bson:"estimated_cost" json:"estimated_cost"`
	ActualCost    *float64           `bson:"actual_cost" json:"actual_cost"`
	Status        LaagStatus         `bson:"status" json:"status"`
	Privacy       Privacy            `bson:"privacy" json:"privacy"`
	WhenStart     time.Time          `bson:"when_start" json:"when_start"`
	WhenEnd       time.Time          `bson:"when_end" json:"when_end"`
	FunMeter      *int               `bson:"fun_meter" json:"fun_meter"`
	Organizer     primitive.ObjectID `bson:"organizer" json:"organizer"`
	GroupID       primitive.ObjectID `bson:"group_id" json:"group_id"`
	IsDeleted     bool               `bson:"is_deleted" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Cost returns the actual cost once known, otherwise the estimate.
func (l Laag) Cost() float64 {
	if l.ActualCost != nil {
		return *l.ActualCost
	}
	return l.EstimatedCost
}
