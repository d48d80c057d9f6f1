// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/laag/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("profiles", profilesSchema())
	ensure("groups", groupsSchema())
	ensure("group_members", groupMembersSchema())
	ensure("laags", laagsSchema())
	ensure("laag_attendees", laagAttendeesSchema())
	ensure("laag_images", laagImagesSchema())
	ensure("comments", commentsSchema())
	ensure("laag_notifications", notificationsSchema())
	ensure("laag_notification_reads", notificationReadsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enumOf[T ~string](vals []T) bson.A {
	out := bson.A{}
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

func profilesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "email", "email_ci", "role", "is_deleted"},
			"properties": bson.M{
				"full_name":    nonBlank,
				"full_name_ci": bson.M{"bsonType": "string"},
				"email":        nonBlank,
				"email_ci":     nonBlank,
				"role":         bson.M{"enum": bson.A{models.RoleAdmin, models.RoleUser}},
				"is_deleted":   bson.M{"bsonType": "bool"},
			},
		},
	}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_name", "owner", "no_members", "is_deleted"},
			"properties": bson.M{
				"group_name":    nonBlank,
				"group_name_ci": bson.M{"bsonType": "string"},
				"group_picture": bson.M{"bsonType": "string"},
				"owner":         bson.M{"bsonType": "objectId"},
				"no_members":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"is_deleted":    bson.M{"bsonType": "bool"},
			},
		},
	}
}

func groupMembersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"group_id", "group_member", "is_removed"},
			"properties": bson.M{
				"group_id":     bson.M{"bsonType": "objectId"},
				"group_member": bson.M{"bsonType": "objectId"},
				"is_removed":   bson.M{"bsonType": "bool"},
				"created_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func laagsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"what", "status", "privacy", "organizer", "group_id", "is_deleted"},
			"properties": bson.M{
				"what":           nonBlank,
				"where":          bson.M{"bsonType": "string"},
				"why":            bson.M{"bsonType": "string"},
				"type":           bson.M{"bsonType": "string"},
				"estimated_cost": bson.M{"bsonType": "number", "minimum": 0},
				"actual_cost":    bson.M{"bsonType": bson.A{"number", "null"}},
				"status":         bson.M{"enum": enumOf(models.AllStatuses)},
				"privacy":        bson.M{"enum": bson.A{string(models.PrivacyPublic), string(models.PrivacyGroupOnly)}},
				"when_start":     bson.M{"bsonType": bson.A{"date", "null"}},
				"when_end":       bson.M{"bsonType": bson.A{"date", "null"}},
				"fun_meter":      bson.M{"bsonType": bson.A{"int", "long", "null"}, "minimum": 0, "maximum": 10},
				"organizer":      bson.M{"bsonType": "objectId"},
				"group_id":       bson.M{"bsonType": "objectId"},
				"is_deleted":     bson.M{"bsonType": "bool"},
			},
		},
	}
}

func laagAttendeesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"laag_id", "attendee_id", "is_removed"},
			"properties": bson.M{
				"laag_id":     bson.M{"bsonType": "objectId"},
				"attendee_id": bson.M{"bsonType": "objectId"},
				"is_removed":  bson.M{"bsonType": "bool"},
			},
		},
	}
}

func laagImagesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"laag_id", "image", "is_deleted"},
			"properties": bson.M{
				"laag_id":     bson.M{"bsonType": "objectId"},
				"image":       nonBlank,
				"uploaded_by": bson.M{"bsonType": "objectId"},
				"is_deleted":  bson.M{"bsonType": "bool"},
			},
		},
	}
}

func commentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"laag_id", "user_id", "comment", "is_deleted"},
			"properties": bson.M{
				"laag_id":    bson.M{"bsonType": "objectId"},
				"user_id":    bson.M{"bsonType": "objectId"},
				"comment":    nonBlank,
				"is_deleted": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func notificationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"laag_id", "group_id", "laag_status"},
			"properties": bson.M{
				"laag_id":     bson.M{"bsonType": "objectId"},
				"group_id":    bson.M{"bsonType": "objectId"},
				"laag_status": bson.M{"enum": bson.A{string(models.StatusCompleted), string(models.StatusCancelled)}},
			},
		},
	}
}

func notificationReadsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"notification_id", "user_id", "is_read"},
			"properties": bson.M{
				"notification_id": bson.M{"bsonType": "objectId"},
				"user_id":         bson.M{"bsonType": "objectId"},
				"is_read":         bson.M{"bsonType": "bool"},
				"read_at":         bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}
