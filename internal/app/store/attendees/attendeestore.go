// internal/app/store/attendees/attendeestore.go
package attendeestore

import (
	"context"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("laag_attendees")}
}

// Attendee is an active attendee row joined with its profile.
type Attendee struct {
	RowID   primitive.ObjectID    `bson:"row_id" json:"id"`
	Profile models.ProfileSummary `bson:"profile" json:"profile"`
}

// Result reports what Reconcile changed.
type Result struct {
	Added   []primitive.ObjectID `json:"added"`
	Removed []primitive.ObjectID `json:"removed"`
}

// Empty reports whether nothing changed.
func (r Result) Empty() bool { return len(r.Added) == 0 && len(r.Removed) == 0 }

// Diff compares the current active attendee set with the target set.
// toAdd = target - current and toRemove = current - target. Duplicates and
// zero ids in either input are ignored; output order follows the inputs.
func Diff(current, target []primitive.ObjectID) (toAdd, toRemove []primitive.ObjectID) {
	cur := make(map[primitive.ObjectID]bool, len(current))
	for _, id := range current {
		if !id.IsZero() {
			cur[id] = true
		}
	}
	want := make(map[primitive.ObjectID]bool, len(target))
	for _, id := range target {
		if id.IsZero() || want[id] {
			continue
		}
		want[id] = true
		if !cur[id] {
			toAdd = append(toAdd, id)
		}
	}
	seen := make(map[primitive.ObjectID]bool, len(current))
	for _, id := range current {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		if !want[id] {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}

// ListActive returns the active attendees of laagID, one entry per profile,
// sorted by name. Deleted profiles are left out.
func (s *Store) ListActive(ctx context.Context, laagID primitive.ObjectID) ([]Attendee, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"laag_id": laagID, "is_removed": false}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    "$attendee_id",
			"row_id": bson.M{"$first": "$_id"},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "profiles",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "profile",
		}}},
		{{Key: "$unwind", Value: "$profile"}},
		{{Key: "$match", Value: bson.M{"profile.is_deleted": false}}},
		{{Key: "$sort", Value: bson.D{{Key: "profile.full_name_ci", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"row_id":             1,
			"profile._id":        1,
			"profile.full_name":  1,
			"profile.avatar_url": 1,
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Attendee{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveAttendeeIDs returns the distinct profile ids attending laagID.
func (s *Store) ActiveAttendeeIDs(ctx context.Context, laagID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "attendee_id", bson.M{"laag_id": laagID, "is_removed": false})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			out = append(out, oid)
		}
	}
	return out, nil
}

// AddMany makes each profile in ids an active attendee of laagID. Callers
// pass only profiles that are not currently active. The most recent removed
// row of a profile is flipped back; profiles with no history get a new row.
func (s *Store) AddMany(ctx context.Context, laagID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()

	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"laag_id":     laagID,
			"attendee_id": bson.M{"$in": ids},
			"is_removed":  true,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$attendee_id", "row_id": bson.M{"$first": "$_id"}}}},
	})
	if err != nil {
		return err
	}
	var latest []struct {
		AttendeeID primitive.ObjectID `bson:"_id"`
		RowID      primitive.ObjectID `bson:"row_id"`
	}
	if err := cur.All(ctx, &latest); err != nil {
		return err
	}

	flipped := make(map[primitive.ObjectID]bool, len(latest))
	rowIDs := make([]primitive.ObjectID, 0, len(latest))
	for _, l := range latest {
		flipped[l.AttendeeID] = true
		rowIDs = append(rowIDs, l.RowID)
	}
	if len(rowIDs) > 0 {
		if _, err := s.c.UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": rowIDs}, "is_removed": true},
			bson.M{"$set": bson.M{"is_removed": false, "updated_at": now}}); err != nil {
			return err
		}
	}

	docs := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if flipped[id] {
			continue
		}
		flipped[id] = true
		docs = append(docs, models.LaagAttendee{
			ID:         primitive.NewObjectID(),
			LaagID:     laagID,
			AttendeeID: id,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	if len(docs) == 0 {
		return nil
	}
	_, err = s.c.InsertMany(ctx, docs)
	return err
}

// RemoveMany flips every active row of the given profiles on laagID.
func (s *Store) RemoveMany(ctx context.Context, laagID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.c.UpdateMany(ctx,
		bson.M{"laag_id": laagID, "attendee_id": bson.M{"$in": ids}, "is_removed": false},
		bson.M{"$set": bson.M{"is_removed": true, "updated_at": time.Now().UTC()}})
	return err
}

// Reconcile makes the active attendee set of laagID equal target using one
// batched removal and one batched add. An unchanged target writes nothing.
func (s *Store) Reconcile(ctx context.Context, laagID primitive.ObjectID, target []primitive.ObjectID) (Result, error) {
	current, err := s.ActiveAttendeeIDs(ctx, laagID)
	if err != nil {
		return Result{}, err
	}
	toAdd, toRemove := Diff(current, target)
	res := Result{Added: toAdd, Removed: toRemove}
	if res.Empty() {
		return res, nil
	}
	if err := s.RemoveMany(ctx, laagID, toRemove); err != nil {
		return Result{}, err
	}
	if err := s.AddMany(ctx, laagID, toAdd); err != nil {
		return Result{}, err
	}
	return res, nil
}

// ProfileCount is the number of distinct laags a profile attends.
type ProfileCount struct {
	ProfileID primitive.ObjectID `bson:"_id"`
	Count     int                `bson:"count"`
}

// CountByProfile counts active attendance per profile across laags that
// have not been deleted and whose group has not been deleted.
func (s *Store) CountByProfile(ctx context.Context) ([]ProfileCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_removed": false}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "laags",
			"localField":   "laag_id",
			"foreignField": "_id",
			"as":           "laag",
		}}},
		{{Key: "$unwind", Value: "$laag"}},
		{{Key: "$match", Value: bson.M{"laag.is_deleted": false}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "groups",
			"localField":   "laag.group_id",
			"foreignField": "_id",
			"as":           "group",
		}}},
		{{Key: "$unwind", Value: "$group"}},
		{{Key: "$match", Value: bson.M{"group.is_deleted": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$attendee_id",
			"laags": bson.M{"$addToSet": "$laag_id"},
		}}},
		{{Key: "$project", Value: bson.M{"count": bson.M{"$size": "$laags"}}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []ProfileCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
