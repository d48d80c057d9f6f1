// internal/app/store/laags/laagstore.go
package laagstore

import (
	"context"
	"errors"
	"strings"
	"time"

	attendeestore "github.com/dalemusser/laag/internal/app/store/attendees"
	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/app/system/txn"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("laag not found")
	ErrNotPlanning = errors.New("laag is no longer in planning")
	ErrBadStatus   = errors.New("invalid status change")
)

type Store struct {
	db        *mongo.Database
	c         *mongo.Collection
	attendees *attendeestore.Store
	members   *membershipstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		db:        db,
		c:         db.Collection("laags"),
		attendees: attendeestore.New(db),
		members:   membershipstore.New(db),
	}
}

// Details are the fields an organizer may edit while a laag is planning.
type Details struct {
	What          string
	Where         string
	Why           string
	Type          string
	EstimatedCost float64
	WhenStart     time.Time
	WhenEnd       time.Time
	Privacy       models.Privacy
}

// Completion carries the fields written when a laag is completed.
// Nil pointers and empty strings leave the stored value unchanged.
type Completion struct {
	ActualCost *float64
	FunMeter   *int
	Privacy    models.Privacy
	Type       string
}

func trimDetails(d Details) Details {
	d.What = strings.TrimSpace(d.What)
	d.Where = strings.TrimSpace(d.Where)
	d.Why = strings.TrimSpace(d.Why)
	d.Type = strings.TrimSpace(d.Type)
	return d
}

// Create inserts a planning laag and its attendees in one transaction
// where supported. Status, actual cost and fun meter are always reset.
func (s *Store) Create(ctx context.Context, l models.Laag, attendeeIDs []primitive.ObjectID) (models.Laag, error) {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	l.What = strings.TrimSpace(l.What)
	l.Where = strings.TrimSpace(l.Where)
	l.Why = strings.TrimSpace(l.Why)
	l.Type = strings.TrimSpace(l.Type)
	l.Status = models.StatusPlanning
	l.ActualCost = nil
	l.FunMeter = nil
	l.IsDeleted = false
	l.CreatedAt = now
	l.UpdatedAt = now

	toAdd, _ := attendeestore.Diff(nil, attendeeIDs)

	err := txn.Run(ctx, s.db.Client(), zap.L(), func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, l); err != nil {
			return err
		}
		return s.attendees.AddMany(ctx, l.ID, toAdd)
	})
	if err != nil {
		return models.Laag{}, err
	}
	return l, nil
}

// GetByID returns a laag that has not been deleted.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Laag, error) {
	var l models.Laag
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Laag{}, ErrNotFound
		}
		return models.Laag{}, err
	}
	return l, nil
}

func (s *Store) find(ctx context.Context, f bson.M) ([]models.Laag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "when_start", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Laag{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByGroup returns the group's laags, newest start first.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Laag, error) {
	return s.find(ctx, bson.M{"group_id": groupID, "is_deleted": false})
}

// ListFeed returns public laags plus every laag in a group profileID
// actively belongs to. Laags of deleted groups are left out.
func (s *Store) ListFeed(ctx context.Context, profileID primitive.ObjectID) ([]models.Laag, error) {
	groupIDs, err := s.members.GroupIDsForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	deleted, err := s.deletedGroupIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, bson.M{
		"is_deleted": false,
		"group_id":   bson.M{"$nin": deleted},
		"$or": bson.A{
			bson.M{"privacy": models.PrivacyPublic},
			bson.M{"group_id": bson.M{"$in": groupIDs}},
		},
	})
}

// deletedGroupIDs lists groups that have been soft-deleted. Group deletion
// does not cascade to laags, so list queries exclude these ids.
func (s *Store) deletedGroupIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := s.db.Collection("groups").Find(ctx,
		bson.M{"is_deleted": true},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out, nil
}

// planningUpdate applies upd to a laag that is still planning. When nothing
// matches it tells a missing laag apart from a terminal one.
func (s *Store) planningUpdate(ctx context.Context, id primitive.ObjectID, upd bson.M) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false, "status": models.StatusPlanning}, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrNotPlanning
}

// UpdateDetails rewrites the editable fields. Status is never touched and
// a laag that has left planning is rejected with ErrNotPlanning.
func (s *Store) UpdateDetails(ctx context.Context, id primitive.ObjectID, d Details) error {
	d = trimDetails(d)
	return s.planningUpdate(ctx, id, bson.M{"$set": bson.M{
		"what":           d.What,
		"where":          d.Where,
		"why":            d.Why,
		"type":           d.Type,
		"estimated_cost": d.EstimatedCost,
		"when_start":     d.WhenStart.UTC(),
		"when_end":       d.WhenEnd.UTC(),
		"privacy":        d.Privacy,
		"updated_at":     time.Now().UTC(),
	}})
}

// SetStatus moves a planning laag to a terminal status. The filter only
// matches planning laags, so a terminal status is never rewritten.
// comp is applied only when completing.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, to models.LaagStatus, comp *Completion) error {
	if !models.StatusPlanning.CanTransition(to) {
		return ErrBadStatus
	}
	set := bson.M{"status": to, "updated_at": time.Now().UTC()}
	if to == models.StatusCompleted && comp != nil {
		if comp.ActualCost != nil {
			set["actual_cost"] = *comp.ActualCost
		}
		if comp.FunMeter != nil {
			set["fun_meter"] = *comp.FunMeter
		}
		if comp.Privacy != "" {
			set["privacy"] = comp.Privacy
		}
		if t := strings.TrimSpace(comp.Type); t != "" {
			set["type"] = t
		}
	}
	return s.planningUpdate(ctx, id, bson.M{"$set": set})
}

// SoftDelete hides the laag from every listing.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of live laags per status. Every known
// status is present in the result, with zero when none exist.
func (s *Store) CountByStatus(ctx context.Context) (map[models.LaagStatus]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_deleted": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status models.LaagStatus `bson:"_id"`
		N      int64             `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[models.LaagStatus]int64, len(models.AllStatuses))
	for _, st := range models.AllStatuses {
		out[st] = 0
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}
