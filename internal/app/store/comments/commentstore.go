// internal/app/store/comments/commentstore.go
package commentstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("comment not found")
	ErrBlank    = errors.New("comment is empty")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("comments")}
}

// Item is a comment joined with its author.
type Item struct {
	ID        primitive.ObjectID    `bson:"_id" json:"id"`
	LaagID    primitive.ObjectID    `bson:"laag_id" json:"laag_id"`
	Comment   string                `bson:"comment" json:"comment"`
	Author    models.ProfileSummary `bson:"author" json:"author"`
	CreatedAt time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at" json:"updated_at"`
}

// Create stores a comment. text must already be sanitized.
func (s *Store) Create(ctx context.Context, laagID, userID primitive.ObjectID, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, ErrBlank
	}
	now := time.Now().UTC()
	c := models.Comment{
		ID:        primitive.NewObjectID(),
		LaagID:    laagID,
		UserID:    userID,
		Comment:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// GetByID returns a comment that has not been deleted.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var c models.Comment
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, err
	}
	return c, nil
}

// ListByLaag returns the laag's comments, oldest first, with author name
// and avatar. Comments by deleted profiles keep showing with the stored name.
func (s *Store) ListByLaag(ctx context.Context, laagID primitive.ObjectID) ([]Item, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"laag_id": laagID, "is_deleted": false}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "profiles",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "author",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$author", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"laag_id":           1,
			"comment":           1,
			"created_at":        1,
			"updated_at":        1,
			"author._id":        "$user_id",
			"author.full_name":  "$author.full_name",
			"author.avatar_url": "$author.avatar_url",
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Item{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateText rewrites a comment. Only the author's own comment matches.
func (s *Store) UpdateText(ctx context.Context, id, userID primitive.ObjectID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrBlank
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID, "is_deleted": false},
		bson.M{"$set": bson.M{"comment": text, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete hides a comment. Only the author's own comment matches.
func (s *Store) SoftDelete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
