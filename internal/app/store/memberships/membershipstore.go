// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrAlreadyMember = errors.New("profile is already a member of this group")
	ErrNotFound      = errors.New("membership not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_members")}
}

// Member is an active membership joined with its profile.
type Member struct {
	MembershipID primitive.ObjectID    `bson:"_id" json:"membership_id"`
	Profile      models.ProfileSummary `bson:"profile" json:"profile"`
	JoinedAt     time.Time             `bson:"updated_at" json:"joined_at"`
}

// Add makes profileID an active member of groupID.
//
// If an active row exists the call fails with ErrAlreadyMember. Otherwise
// the most recent removed row is flipped back, or a new row is inserted
// when the pair has no history. The group's no_members field is not touched.
func (s *Store) Add(ctx context.Context, groupID, profileID primitive.ObjectID) (models.GroupMember, error) {
	pair := bson.M{"group_id": groupID, "group_member": profileID}
	now := time.Now().UTC()

	var latest models.GroupMember
	err := s.c.FindOne(ctx, pair, options.FindOne().
		SetSort(bson.D{{Key: "is_removed", Value: 1}, {Key: "created_at", Value: -1}})).Decode(&latest)
	switch {
	case err == nil && !latest.IsRemoved:
		return models.GroupMember{}, ErrAlreadyMember

	case err == nil:
		res, uerr := s.c.UpdateOne(ctx,
			bson.M{"_id": latest.ID, "is_removed": true},
			bson.M{"$set": bson.M{"is_removed": false, "updated_at": now}})
		if uerr != nil {
			if wafflemongo.IsDup(uerr) {
				return models.GroupMember{}, ErrAlreadyMember
			}
			return models.GroupMember{}, uerr
		}
		if res.MatchedCount == 0 {
			// flipped concurrently
			return models.GroupMember{}, ErrAlreadyMember
		}
		latest.IsRemoved = false
		latest.UpdatedAt = now
		return latest, nil

	case errors.Is(err, mongo.ErrNoDocuments):
		m := models.GroupMember{
			ID:          primitive.NewObjectID(),
			GroupID:     groupID,
			GroupMember: profileID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, ierr := s.c.InsertOne(ctx, m); ierr != nil {
			if wafflemongo.IsDup(ierr) {
				return models.GroupMember{}, ErrAlreadyMember
			}
			return models.GroupMember{}, ierr
		}
		return m, nil

	default:
		return models.GroupMember{}, err
	}
}

// AddNew inserts active rows for profiles with no history in a freshly
// created group. Used inside group creation.
func (s *Store) AddNew(ctx context.Context, groupID primitive.ObjectID, profileIDs []primitive.ObjectID) error {
	if len(profileIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(profileIDs))
	for _, pid := range profileIDs {
		docs = append(docs, models.GroupMember{
			ID:          primitive.NewObjectID(),
			GroupID:     groupID,
			GroupMember: pid,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// Get returns a membership row by id.
func (s *Store) Get(ctx context.Context, rowID primitive.ObjectID) (models.GroupMember, error) {
	var m models.GroupMember
	if err := s.c.FindOne(ctx, bson.M{"_id": rowID}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroupMember{}, ErrNotFound
		}
		return models.GroupMember{}, err
	}
	return m, nil
}

// Remove flips is_removed on the given active row.
func (s *Store) Remove(ctx context.Context, rowID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": rowID, "is_removed": false},
		bson.M{"$set": bson.M{"is_removed": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns active members of groupID with their profiles, sorted
// by name. Deleted profiles are left out.
func (s *Store) ListActive(ctx context.Context, groupID primitive.ObjectID) ([]Member, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"group_id": groupID, "is_removed": false}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "profiles",
			"localField":   "group_member",
			"foreignField": "_id",
			"as":           "profile",
		}}},
		{{Key: "$unwind", Value: "$profile"}},
		{{Key: "$match", Value: bson.M{"profile.is_deleted": false}}},
		{{Key: "$sort", Value: bson.D{{Key: "profile.full_name_ci", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"_id":                1,
			"updated_at":         1,
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

	out := []Member{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func distinctIDs(raw []interface{}) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			out = append(out, oid)
		}
	}
	return out
}

// ActiveProfileIDs returns the profile ids of groupID's active members.
func (s *Store) ActiveProfileIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "group_member", bson.M{"group_id": groupID, "is_removed": false})
	if err != nil {
		return nil, err
	}
	return distinctIDs(raw), nil
}

// GroupIDsForProfile returns the groups profileID actively belongs to.
func (s *Store) GroupIDsForProfile(ctx context.Context, profileID primitive.ObjectID) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "group_id", bson.M{"group_member": profileID, "is_removed": false})
	if err != nil {
		return nil, err
	}
	return distinctIDs(raw), nil
}

// IsActiveMember reports whether profileID has an active row in groupID.
func (s *Store) IsActiveMember(ctx context.Context, groupID, profileID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx,
		bson.M{"group_id": groupID, "group_member": profileID, "is_removed": false},
		options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActive returns the live member count of groupID.
func (s *Store) CountActive(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID, "is_removed": false})
}
