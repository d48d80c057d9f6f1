package laagfilter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", s)
	return t
}

func ptr(f float64) *float64 { return &f }

func sample() []models.Laag {
	return []models.Laag{
		{What: "Beach volleyball", Where: "Playa", Status: models.StatusPlanning, Privacy: models.PrivacyPublic, EstimatedCost: 20, WhenStart: day("2024-06-10 10:00")},
		{What: "Movie night", Where: "Cinema", Why: "New release", Status: models.StatusCompleted, Privacy: models.PrivacyGroupOnly, EstimatedCost: 15, ActualCost: ptr(40), WhenStart: day("2024-05-01 20:00")},
		{What: "Café crawl", Where: "Downtown", Status: models.StatusCancelled, Privacy: models.PrivacyPublic, EstimatedCost: 30, WhenStart: day("2024-07-04 09:00")},
	}
}

func whats(ls []models.Laag) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.What
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{"default sorts by date asc", Filter{}, []string{"Movie night", "Beach volleyball", "Café crawl"}},
		{"date desc", Filter{Desc: true}, []string{"Café crawl", "Beach volleyball", "Movie night"}},
		{"cost uses actual when set", Filter{SortBy: SortCost}, []string{"Beach volleyball", "Café crawl", "Movie night"}},
		{"status", Filter{Status: models.StatusCompleted}, []string{"Movie night"}},
		{"privacy", Filter{Privacy: models.PrivacyPublic}, []string{"Beach volleyball", "Café crawl"}},
		{"search is case and accent folded", Filter{Search: "CAFE"}, []string{"Café crawl"}},
		{"search covers why", Filter{Search: "release"}, []string{"Movie night"}},
		{"date range inclusive", Filter{From: day("2024-06-10 10:00"), To: day("2024-07-04 09:00")}, []string{"Beach volleyball", "Café crawl"}},
		{"nothing matches", Filter{Search: "skydiving"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := whats(Apply(sample(), tt.f))
			if !equal(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	in := sample()
	_ = Apply(in, Filter{Desc: true})
	if in[0].What != "Beach volleyball" {
		t.Error("input slice was reordered")
	}
}

func TestParse(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?q=+beach+&status=Planning&privacy=public&from=2024-06-01&to=2024-06-30&sort=cost&order=DESC", nil)
	f, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Search != "beach" || f.Status != models.StatusPlanning || f.Privacy != models.PrivacyPublic ||
		f.SortBy != SortCost || !f.Desc {
		t.Errorf("unexpected filter %+v", f)
	}
	if !f.To.After(day("2024-06-30 23:00")) {
		t.Errorf("to should cover the whole day, got %v", f.To)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, q := range []string{"status=Done", "privacy=friends", "sort=name", "from=June", "to=2024-13-01"} {
		t.Run(q, func(t *testing.T) {
			if _, err := Parse(httptest.NewRequest("GET", "/x?"+q, nil)); err == nil {
				t.Errorf("expected error for %q", q)
			}
		})
	}
}
