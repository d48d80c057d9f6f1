// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"strings"
	"time"

	membershipstore "github.com/dalemusser/laag/internal/app/store/memberships"
	"github.com/dalemusser/laag/internal/app/system/txn"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("group not found")
	ErrBlankName = errors.New("group name is required")
)

type Store struct {
	db      *mongo.Database
	c       *mongo.Collection
	members *membershipstore.Store
}

func New(db *mongo.Database) *Store {
	return &Store{
		db:      db,
		c:       db.Collection("groups"),
		members: membershipstore.New(db),
	}
}

// distinctMembers drops duplicates and the owner from ids.
func distinctMembers(owner primitive.ObjectID, ids []primitive.ObjectID) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{owner: true}
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Create inserts the group and one active membership row for the owner and
// each distinct member, in one transaction where supported. no_members is
// set to the number of distinct members plus the owner.
func (s *Store) Create(ctx context.Context, g models.Group, memberIDs []primitive.ObjectID) (models.Group, error) {
	g.GroupName = strings.TrimSpace(g.GroupName)
	if g.GroupName == "" {
		return models.Group{}, ErrBlankName
	}
	members := distinctMembers(g.Owner, memberIDs)

	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.GroupNameCI = text.Fold(g.GroupName)
	g.NoMembers = len(members) + 1
	g.IsDeleted = false
	g.CreatedAt = now
	g.UpdatedAt = now

	err := txn.Run(ctx, s.db.Client(), zap.L(), func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, g); err != nil {
			return err
		}
		return s.members.AddNew(ctx, g.ID, append([]primitive.ObjectID{g.Owner}, members...))
	})
	if err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// GetByID returns a group that has not been deleted.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) find(ctx context.Context, f bson.M) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "group_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForProfile returns groups profileID owns or actively belongs to.
func (s *Store) ListForProfile(ctx context.Context, profileID primitive.ObjectID) ([]models.Group, error) {
	ids, err := s.members.GroupIDsForProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, bson.M{
		"is_deleted": false,
		"$or": bson.A{
			bson.M{"owner": profileID},
			bson.M{"_id": bson.M{"$in": ids}},
		},
	})
}

// ListAll returns every group that has not been deleted.
func (s *Store) ListAll(ctx context.Context) ([]models.Group, error) {
	return s.find(ctx, bson.M{"is_deleted": false})
}

func (s *Store) set(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": false}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateInfo renames the group.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	return s.set(ctx, id, bson.M{"group_name": name, "group_name_ci": text.Fold(name)})
}

// SetPicture stores the blob path of the group picture.
func (s *Store) SetPicture(ctx context.Context, id primitive.ObjectID, path string) error {
	return s.set(ctx, id, bson.M{"group_picture": path})
}

// SoftDelete hides the group. Memberships and laags are left as they are.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	return s.set(ctx, id, bson.M{"is_deleted": true})
}

// CountActive returns the number of groups that have not been deleted.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"is_deleted": false})
}
