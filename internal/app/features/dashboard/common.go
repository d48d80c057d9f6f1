// internal/app/features/dashboard/common.go
package dashboard

import (
	metricsstore "github.com/dalemusser/laag/internal/app/store/metrics"
	"github.com/dalemusser/laag/internal/app/store/queries/leaderboard"
	"github.com/dalemusser/laag/internal/domain/models"
)

// adminData is the admin dashboard: site totals plus the first
// leaderboard page.
type adminData struct {
	Counts      metricsstore.Counts `json:"counts"`
	Leaderboard leaderboard.Page    `json:"leaderboard"`
}

// userData is the signed-in user's home view.
type userData struct {
	Groups   int                `json:"groups"`
	Unread   int64              `json:"unread"`
	Upcoming []models.Laag      `json:"upcoming"`
	MyRank   *leaderboard.Entry `json:"my_rank,omitempty"`
}
