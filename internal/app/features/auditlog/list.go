// internal/app/features/auditlog/list.go
package auditlog

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	auditstore "github.com/dalemusser/laag/internal/app/store/audit"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// parseFilter reads category, event_type, user, group, laag, start_date
// and end_date. Dates are whole UTC days; end_date is inclusive.
func parseFilter(r *http.Request) (auditstore.QueryFilter, error) {
	f := auditstore.QueryFilter{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
	}

	for _, p := range []struct {
		key string
		dst **primitive.ObjectID
	}{
		{"user", &f.UserID},
		{"group", &f.GroupID},
		{"laag", &f.LaagID},
	} {
		v := strings.TrimSpace(query.Get(r, p.key))
		if v == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return f, fmt.Errorf("%s: not a valid id", p.key)
		}
		*p.dst = &id
	}

	if v := strings.TrimSpace(query.Get(r, "start_date")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, fmt.Errorf("start_date: want YYYY-MM-DD")
		}
		f.StartTime = &t
	}
	if v := strings.TrimSpace(query.Get(r, "end_date")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, fmt.Errorf("end_date: want YYYY-MM-DD")
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.EndTime = &end
	}
	return f, nil
}

// ServeList returns one page of audit events, newest first.
// GET /admin/audit
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad audit filter", err, err.Error())
		return
	}
	page := paging.ParsePage(r)
	size := paging.ParseSize(r, paging.PageSize)
	filter.Limit = int64(size)
	filter.Offset = int64((page - 1) * size)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "query audit events failed", err, "Failed to load the audit log.")
		return
	}
	total, err := h.Events.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count audit events failed", err, "Failed to load the audit log.")
		return
	}

	// Batch-resolve profile names; deleted profiles keep showing their id.
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, ok := seen[*id]; !ok {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	names := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) > 0 {
		profiles, err := h.Profiles.ListByIDs(ctx, ids)
		if err != nil {
			h.Log.Warn("failed to fetch profile names for audit log", zap.Error(err))
		}
		for _, p := range profiles {
			names[p.ID] = p.FullName
		}
	}
	name := func(id *primitive.ObjectID) string {
		if id == nil {
			return ""
		}
		if n, ok := names[*id]; ok {
			return n
		}
		return id.Hex()
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{Event: e, ActorName: name(e.ActorID), TargetName: name(e.UserID)})
	}

	httpx.WriteJSON(w, http.StatusOK, listData{
		Items:      items,
		Range:      paging.Window(page, size, int(total), len(items)),
		Categories: categories,
		EventTypes: eventTypes,
	})
}
