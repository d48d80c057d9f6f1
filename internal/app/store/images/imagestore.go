// internal/app/store/images/imagestore.go
package imagestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("image not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("laag_images")}
}

// Add records an image whose blob has already been stored at path.
func (s *Store) Add(ctx context.Context, laagID primitive.ObjectID, path string, uploader primitive.ObjectID) (models.LaagImage, error) {
	img := models.LaagImage{
		ID:         primitive.NewObjectID(),
		LaagID:     laagID,
		Image:      path,
		UploadedBy: uploader,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, img); err != nil {
		return models.LaagImage{}, err
	}
	return img, nil
}

// AddMany records several images for one laag in a single insert.
func (s *Store) AddMany(ctx context.Context, laagID primitive.ObjectID, paths []string, uploader primitive.ObjectID) error {
	if len(paths) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, models.LaagImage{
			ID:         primitive.NewObjectID(),
			LaagID:     laagID,
			Image:      p,
			UploadedBy: uploader,
			CreatedAt:  now,
		})
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// GetByID returns an image that has not been deleted.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.LaagImage, error) {
	var img models.LaagImage
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&img); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.LaagImage{}, ErrNotFound
		}
		return models.LaagImage{}, err
	}
	return img, nil
}

// ListByLaag returns the laag's images, oldest first.
func (s *Store) ListByLaag(ctx context.Context, laagID primitive.ObjectID) ([]models.LaagImage, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"laag_id": laagID, "is_deleted": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.LaagImage{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SoftDelete hides the image. The blob stays in storage.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
