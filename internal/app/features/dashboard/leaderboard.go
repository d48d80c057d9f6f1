// internal/app/features/dashboard/leaderboard.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/laag/internal/app/store/queries/leaderboard"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
)

// ServeLeaderboard returns the ranking up to ?shown= pages.
// GET /leaderboard
func (h *Handler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	page, err := leaderboard.ShowMore(ctx, h.DB, paging.ParseShown(r), h.LeaderboardPageSize)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build leaderboard failed", err, "Failed to load the leaderboard.")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}
