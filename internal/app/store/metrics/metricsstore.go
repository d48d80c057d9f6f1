package metricsstore

import (
	"context"

	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the admin dashboard.
type Counts struct {
	Profiles      int64                       `json:"profiles"`
	Admins        int64                       `json:"admins"`
	Groups        int64                       `json:"groups"`
	Laags         int64                       `json:"laags"`
	LaagsByStatus map[models.LaagStatus]int64 `json:"laags_by_status"`
	Comments      int64                       `json:"comments"`
	Images        int64                       `json:"images"`
	Notifications int64                       `json:"notifications"`
}

// FetchDashboardCounts returns the high-level counts used by the admin
// dashboard. Intentionally tolerant: on error it returns 0 for that counter.
// Soft-deleted rows are never counted.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database) Counts {
	out := Counts{LaagsByStatus: make(map[models.LaagStatus]int64, len(models.AllStatuses))}
	for _, s := range models.AllStatuses {
		out.LaagsByStatus[s] = 0
	}

	// profiles
	if n, err := profilestore.New(db).CountActive(ctx); err == nil {
		out.Profiles = n
	}
	if n, err := db.Collection("profiles").CountDocuments(ctx, bson.M{"role": models.RoleAdmin, "is_deleted": false}); err == nil {
		out.Admins = n
	}

	// groups
	if n, err := groupstore.New(db).CountActive(ctx); err == nil {
		out.Groups = n
	}

	// laags
	if byStatus, err := laagstore.New(db).CountByStatus(ctx); err == nil {
		for s, n := range byStatus {
			out.LaagsByStatus[s] = n
			out.Laags += n
		}
	}

	// activity on laags
	notDeleted := bson.M{"is_deleted": false}
	if n, err := db.Collection("comments").CountDocuments(ctx, notDeleted); err == nil {
		out.Comments = n
	}
	if n, err := db.Collection("laag_images").CountDocuments(ctx, notDeleted); err == nil {
		out.Images = n
	}
	if n, err := db.Collection("laag_notifications").CountDocuments(ctx, bson.M{}); err == nil {
		out.Notifications = n
	}

	return out
}
