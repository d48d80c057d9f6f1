// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	metricsstore "github.com/dalemusser/laag/internal/app/store/metrics"
	"github.com/dalemusser/laag/internal/app/store/queries/leaderboard"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeAdmin returns totals by laag status and the first leaderboard page.
// GET /admin/dashboard
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	if !authz.IsAdmin(r) {
		h.ErrLog.LogForbidden(w, r, "admin dashboard denied", "Admins only.")
		return
	}
	_, uname, _, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	counts := metricsstore.FetchDashboardCounts(ctx, h.DB)
	board, err := leaderboard.ShowMore(ctx, h.DB, 1, h.LeaderboardPageSize)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build leaderboard failed", err, "Failed to load the dashboard.")
		return
	}

	h.Log.Debug("admin dashboard served", zap.String("user", uname))
	httpx.WriteJSON(w, http.StatusOK, adminData{Counts: counts, Leaderboard: board})
}
