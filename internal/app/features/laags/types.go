// internal/app/features/laags/types.go
package laags

import (
	"time"

	attendeestore "github.com/dalemusser/laag/internal/app/store/attendees"
	commentstore "github.com/dalemusser/laag/internal/app/store/comments"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	"github.com/dalemusser/laag/internal/app/system/htmlsanitize"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/domain/models"
)

type laagItem struct {
	models.Laag
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type laagDetail struct {
	laagItem
	Attendees []attendeestore.Attendee `json:"attendees"`
	Images    []models.LaagImage       `json:"images"`
	Comments  []commentstore.Item      `json:"comments"`
}

type listData struct {
	Laags []laagItem   `json:"laags"`
	Range paging.Range `json:"range"`
}

// laagInput is the create/edit payload. On edit a nil AttendeeIDs leaves
// attendees unchanged and an empty list removes them all.
type laagInput struct {
	What          string    `json:"what" validate:"notblank,max=200"`
	Where         string    `json:"where" validate:"max=200"`
	Why           string    `json:"why" validate:"max=2000"`
	Type          string    `json:"type" validate:"max=60"`
	EstimatedCost float64   `json:"estimated_cost" validate:"gte=0"`
	WhenStart     time.Time `json:"when_start" validate:"required"`
	WhenEnd       time.Time `json:"when_end" validate:"required,gtefield=WhenStart"`
	Privacy       string    `json:"privacy" validate:"required,privacy"`
	AttendeeIDs   []string  `json:"attendee_ids" validate:"omitempty,dive,objectid"`
}

func (in laagInput) details() laagstore.Details {
	return laagstore.Details{
		What:          htmlsanitize.StripTags(in.What),
		Where:         htmlsanitize.StripTags(in.Where),
		Why:           htmlsanitize.StripTags(in.Why),
		Type:          htmlsanitize.StripTags(in.Type),
		EstimatedCost: in.EstimatedCost,
		WhenStart:     in.WhenStart.UTC(),
		WhenEnd:       in.WhenEnd.UTC(),
		Privacy:       models.Privacy(in.Privacy),
	}
}

type completeInput struct {
	ActualCost  *float64 `json:"actual_cost" validate:"required,gte=0"`
	FunMeter    *int     `json:"fun_meter" validate:"required,min=0,max=10"`
	Privacy     string   `json:"privacy" validate:"omitempty,privacy"`
	Type        string   `json:"type" validate:"max=60"`
	AttendeeIDs []string `json:"attendee_ids" validate:"omitempty,dive,objectid"`
}

type commentInput struct {
	Comment string `json:"comment" validate:"notblank,max=4000"`
}
