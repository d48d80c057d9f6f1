// Package leaderboard ranks profiles by how many laags they attend.
package leaderboard

import (
	"context"
	"sort"

	attendeestore "github.com/dalemusser/laag/internal/app/store/attendees"
	profilestore "github.com/dalemusser/laag/internal/app/store/profiles"
	"github.com/dalemusser/laag/internal/app/system/paging"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Entry is one ranked profile.
type Entry struct {
	Rank    int                   `json:"rank"`
	Profile models.ProfileSummary `json:"profile"`
	Count   int                   `json:"count"`
}

// Page is a "show more" window over the full ranking.
type Page struct {
	Entries []Entry      `json:"entries"`
	Range   paging.Range `json:"range"`
}

// Rank joins counts with profiles and orders them by count descending,
// then name ascending. Counts whose profile is missing are dropped.
// Ties share a rank.
func Rank(counts []attendeestore.ProfileCount, profiles []models.ProfileSummary) []Entry {
	byID := make(map[primitive.ObjectID]models.ProfileSummary, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	out := make([]Entry, 0, len(counts))
	for _, c := range counts {
		p, ok := byID[c.ProfileID]
		if !ok || c.Count <= 0 {
			continue
		}
		out = append(out, Entry{Profile: p, Count: c.Count})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		ni, nj := text.Fold(out[i].Profile.FullName), text.Fold(out[j].Profile.FullName)
		if ni != nj {
			return ni < nj
		}
		return out[i].Profile.ID.Hex() < out[j].Profile.ID.Hex()
	})

	for i := range out {
		if i > 0 && out[i].Count == out[i-1].Count {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

// Build computes the full ranking from live data.
func Build(ctx context.Context, db *mongo.Database) ([]Entry, error) {
	counts, err := attendeestore.New(db).CountByProfile(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.ProfileID)
	}
	profiles, err := profilestore.New(db).ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return Rank(counts, profiles), nil
}

// ShowMore returns the first shown entries of the ranking, growing by
// size on each request.
func ShowMore(ctx context.Context, db *mongo.Database, shown, size int) (Page, error) {
	all, err := Build(ctx, db)
	if err != nil {
		return Page{}, err
	}
	rows, rng := paging.ShowMore(all, shown, size)
	return Page{Entries: rows, Range: rng}, nil
}
