// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateEmail = errors.New("a profile with this email already exists")
	ErrNotFound       = errors.New("profile not found")
)

type Store struct {
	c       *mongo.Collection
	members *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:       db.Collection("profiles"),
		members: db.Collection("group_members"),
	}
}

// active is the base filter for every read except admin listings.
func active(extra bson.M) bson.M {
	f := bson.M{"is_deleted": false}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

// nameSearch adds a case/diacritic-insensitive substring match on full name.
func nameSearch(f bson.M, search string) bson.M {
	if s := strings.TrimSpace(search); s != "" {
		f["full_name_ci"] = bson.M{"$regex": regexp.QuoteMeta(text.Fold(s))}
	}
	return f
}

// Create inserts a profile. Email uniqueness is case-insensitive.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.FullName = strings.TrimSpace(p.FullName)
	p.FullNameCI = text.Fold(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.EmailCI = text.Fold(p.Email)
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	p.IsDeleted = false
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) findOne(ctx context.Context, f bson.M) (models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, f).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, err
	}
	return p, nil
}

// GetByID returns an active profile.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	return s.findOne(ctx, active(bson.M{"_id": id}))
}

// GetByEmail returns an active profile by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Profile, error) {
	return s.findOne(ctx, active(bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}))
}

// UpdateAccount changes the display name and, when avatarURL is non-nil,
// the avatar.
func (s *Store) UpdateAccount(ctx context.Context, id primitive.ObjectID, fullName string, avatarURL *string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name := strings.TrimSpace(fullName); name != "" {
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if avatarURL != nil {
		set["avatar_url"] = *avatarURL
	}
	res, err := s.c.UpdateOne(ctx, active(bson.M{"_id": id}), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole changes an active profile's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := s.c.UpdateOne(ctx, active(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete hides a profile everywhere. The row is kept.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, active(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"is_deleted": true,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActive returns active profiles sorted by name, optionally filtered by
// a name substring.
func (s *Store) ListActive(ctx context.Context, search string) ([]models.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, nameSearch(active(nil), search), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Profile{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByIDs returns summaries of the active profiles among ids.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.ProfileSummary, error) {
	if len(ids) == 0 {
		return []models.ProfileSummary{}, nil
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "full_name": 1, "avatar_url": 1}).
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, active(bson.M{"_id": bson.M{"$in": ids}}), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ProfileSummary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAvailableForGroup returns active, non-admin profiles that are not
// active members of groupID.
func (s *Store) ListAvailableForGroup(ctx context.Context, groupID primitive.ObjectID, search string) ([]models.ProfileSummary, error) {
	raw, err := s.members.Distinct(ctx, "group_member", bson.M{"group_id": groupID, "is_removed": false})
	if err != nil {
		return nil, err
	}
	exclude := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			exclude = append(exclude, oid)
		}
	}

	f := nameSearch(active(bson.M{
		"role": bson.M{"$ne": models.RoleAdmin},
		"_id":  bson.M{"$nin": exclude},
	}), search)
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "full_name": 1, "avatar_url": 1}).
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ProfileSummary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountActive returns the number of active profiles.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, active(nil))
}
