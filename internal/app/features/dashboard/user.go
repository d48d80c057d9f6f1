// internal/app/features/dashboard/user.go
package dashboard

import (
	"context"
	"net/http"
	"sort"
	"time"

	groupstore "github.com/dalemusser/laag/internal/app/store/groups"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	notificationstore "github.com/dalemusser/laag/internal/app/store/notifications"
	"github.com/dalemusser/laag/internal/app/store/queries/leaderboard"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/domain/models"
)

// upcomingLimit caps the planning laags listed on the user dashboard.
const upcomingLimit = 5

// ServeUser returns the caller's group count, unread badge, next planning
// laags and leaderboard position.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	groups, err := groupstore.New(h.DB).ListForProfile(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "Failed to load the dashboard.")
		return
	}
	unread, err := notificationstore.New(h.DB).UnreadCount(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count unread failed", err, "Failed to load the dashboard.")
		return
	}
	feed, err := laagstore.New(h.DB).ListFeed(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list feed failed", err, "Failed to load the dashboard.")
		return
	}
	board, err := leaderboard.Build(ctx, h.DB)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build leaderboard failed", err, "Failed to load the dashboard.")
		return
	}

	data := userData{
		Groups:   len(groups),
		Unread:   unread,
		Upcoming: upcoming(feed, time.Now().UTC()),
	}
	for i := range board {
		if board[i].Profile.ID == uid {
			data.MyRank = &board[i]
			break
		}
	}
	httpx.WriteJSON(w, http.StatusOK, data)
}

// upcoming returns planning laags starting at or after now, soonest first.
func upcoming(laags []models.Laag, now time.Time) []models.Laag {
	out := make([]models.Laag, 0, upcomingLimit)
	for _, l := range laags {
		if l.Status == models.StatusPlanning && !l.WhenStart.Before(now) {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WhenStart.Before(out[j].WhenStart) })
	if len(out) > upcomingLimit {
		out = out[:upcomingLimit]
	}
	return out
}
