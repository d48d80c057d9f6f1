// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = errors.New("notification not found")
	ErrNotTerminal = errors.New("notifications are only sent for completed or cancelled laags")
)

// listLimit caps how many notifications ListForUser returns.
const listLimit = 100

type Store struct {
	notes *mongo.Collection
	reads *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		notes: db.Collection("laag_notifications"),
		reads: db.Collection("laag_notification_reads"),
	}
}

// Item is a recipient's read-row joined with its notification and laag.
type Item struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	NotificationID primitive.ObjectID `bson:"notification_id" json:"notification_id"`
	IsRead         bool               `bson:"is_read" json:"is_read"`
	ReadAt         *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	LaagID         primitive.ObjectID `bson:"laag_id" json:"laag_id"`
	GroupID        primitive.ObjectID `bson:"group_id" json:"group_id"`
	LaagStatus     models.LaagStatus  `bson:"laag_status" json:"laag_status"`
	LaagWhat       string             `bson:"laag_what" json:"laag_what"`
}

// Create stores the notification for a laag that has reached status.
func (s *Store) Create(ctx context.Context, laagID, groupID primitive.ObjectID, status models.LaagStatus) (models.LaagNotification, error) {
	if !status.IsTerminal() {
		return models.LaagNotification{}, ErrNotTerminal
	}
	n := models.LaagNotification{
		ID:         primitive.NewObjectID(),
		LaagID:     laagID,
		GroupID:    groupID,
		LaagStatus: status,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.notes.InsertOne(ctx, n); err != nil {
		return models.LaagNotification{}, err
	}
	return n, nil
}

// FanOut inserts one unread read-row per distinct user and returns the
// recipients written.
func (s *Store) FanOut(ctx context.Context, notificationID primitive.ObjectID, userIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	now := time.Now().UTC()
	seen := make(map[primitive.ObjectID]bool, len(userIDs))
	recipients := make([]primitive.ObjectID, 0, len(userIDs))
	docs := make([]interface{}, 0, len(userIDs))
	for _, uid := range userIDs {
		if uid.IsZero() || seen[uid] {
			continue
		}
		seen[uid] = true
		recipients = append(recipients, uid)
		docs = append(docs, models.LaagNotificationRead{
			ID:             primitive.NewObjectID(),
			NotificationID: notificationID,
			UserID:         uid,
			CreatedAt:      now,
		})
	}
	if len(docs) == 0 {
		return recipients, nil
	}
	if _, err := s.reads.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	return recipients, nil
}

// visibleReads is the shared head of the list and count pipelines: the
// user's read-rows whose notification and laag both still exist.
func visibleReads(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "laag_notifications",
			"localField":   "notification_id",
			"foreignField": "_id",
			"as":           "n",
		}}},
		{{Key: "$unwind", Value: "$n"}},
		{{Key: "$match", Value: bson.M{"n.is_deleted": false}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "laags",
			"localField":   "n.laag_id",
			"foreignField": "_id",
			"as":           "l",
		}}},
		{{Key: "$unwind", Value: "$l"}},
		{{Key: "$match", Value: bson.M{"l.is_deleted": false}}},
	}
}

// ListForUser returns the user's notifications, newest first. Notifications
// about deleted laags are left out.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]Item, error) {
	pipeline := visibleReads(bson.M{"user_id": userID})
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		bson.D{{Key: "$limit", Value: listLimit}},
		bson.D{{Key: "$project", Value: bson.M{
			"notification_id": 1,
			"is_read":         1,
			"read_at":         1,
			"created_at":      1,
			"laag_id":         "$n.laag_id",
			"group_id":        "$n.group_id",
			"laag_status":     "$n.laag_status",
			"laag_what":       "$l.what",
		}}},
	)
	cur, err := s.reads.Aggregate(ctx, pipeline)
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

// UnreadCount returns how many of the notifications ListForUser would show
// are unread.
func (s *Store) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	pipeline := visibleReads(bson.M{"user_id": userID, "is_read": false})
	pipeline = append(pipeline, bson.D{{Key: "$count", Value: "n"}})
	cur, err := s.reads.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		N int64 `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].N, nil
}

func (s *Store) setRead(ctx context.Context, notificationID, userID primitive.ObjectID, upd bson.M) error {
	res, err := s.reads.UpdateOne(ctx,
		bson.M{"notification_id": notificationID, "user_id": userID}, upd)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkRead marks one notification read for the user.
func (s *Store) MarkRead(ctx context.Context, notificationID, userID primitive.ObjectID) error {
	return s.setRead(ctx, notificationID, userID,
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now().UTC()}})
}

// MarkUnread marks one notification unread again.
func (s *Store) MarkUnread(ctx context.Context, notificationID, userID primitive.ObjectID) error {
	return s.setRead(ctx, notificationID, userID, bson.M{
		"$set":   bson.M{"is_read": false},
		"$unset": bson.M{"read_at": ""},
	})
}

// MarkAllRead marks every unread notification of the user read in one
// update and returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.reads.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountForNotification returns how many read-rows exist for a notification.
func (s *Store) CountForNotification(ctx context.Context, notificationID primitive.ObjectID) (int64, error) {
	return s.reads.CountDocuments(ctx, bson.M{"notification_id": notificationID})
}

// CountForLaag returns how many notifications exist for a laag.
func (s *Store) CountForLaag(ctx context.Context, laagID primitive.ObjectID) (int64, error) {
	return s.notes.CountDocuments(ctx, bson.M{"laag_id": laagID, "is_deleted": false})
}
