// Package laagfilter applies the search, status, privacy, date-range and
// sort options of the laag list screens.
package laagfilter

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
)

// Sort keys.
const (
	SortDate = "date"
	SortCost = "cost"
)

// Filter selects and orders laags. Zero values mean "no constraint".
type Filter struct {
	Search  string
	Status  models.LaagStatus
	Privacy models.Privacy
	From    time.Time // inclusive, on when_start
	To      time.Time // inclusive, on when_start
	SortBy  string    // date (default) | cost
	Desc    bool
}

// Parse reads q, status, privacy, from, to, sort and order from the query
// string. Dates are YYYY-MM-DD; "to" covers the whole day.
func Parse(r *http.Request) (Filter, error) {
	f := Filter{
		Search:  strings.TrimSpace(query.Get(r, "q")),
		Status:  models.LaagStatus(query.Get(r, "status")),
		Privacy: models.Privacy(query.Get(r, "privacy")),
		SortBy:  strings.ToLower(query.Get(r, "sort")),
		Desc:    strings.EqualFold(query.Get(r, "order"), "desc"),
	}
	if f.Status != "" && !f.Status.Valid() {
		return Filter{}, fmt.Errorf("unknown status %q", f.Status)
	}
	if f.Privacy != "" && !f.Privacy.Valid() {
		return Filter{}, fmt.Errorf("unknown privacy %q", f.Privacy)
	}
	switch f.SortBy {
	case "", SortDate, SortCost:
	default:
		return Filter{}, fmt.Errorf("unknown sort %q", f.SortBy)
	}
	var err error
	if f.From, err = parseDay(query.Get(r, "from")); err != nil {
		return Filter{}, fmt.Errorf("from: %w", err)
	}
	if f.To, err = parseDay(query.Get(r, "to")); err != nil {
		return Filter{}, fmt.Errorf("to: %w", err)
	}
	if !f.To.IsZero() {
		f.To = f.To.Add(24*time.Hour - time.Nanosecond)
	}
	return f, nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// Match reports whether l passes every constraint in f.
func (f Filter) Match(l models.Laag) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Privacy != "" && l.Privacy != f.Privacy {
		return false
	}
	if !f.From.IsZero() && l.WhenStart.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && l.WhenStart.After(f.To) {
		return false
	}
	if f.Search != "" {
		needle := text.Fold(f.Search)
		hay := text.Fold(l.What + "\n" + l.Where + "\n" + l.Why)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

// Apply returns the matching laags in the requested order. The input slice
// is not modified.
func Apply(laags []models.Laag, f Filter) []models.Laag {
	out := make([]models.Laag, 0, len(laags))
	for _, l := range laags {
		if f.Match(l) {
			out = append(out, l)
		}
	}

	less := func(a, b models.Laag) bool { return a.WhenStart.Before(b.WhenStart) }
	if f.SortBy == SortCost {
		less = func(a, b models.Laag) bool { return a.Cost() < b.Cost() }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}
