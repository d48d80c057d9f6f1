// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, step := range []struct {
		coll string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"profiles", ensureProfiles},
		{"groups", ensureGroups},
		{"group_members", ensureGroupMembers},
		{"laags", ensureLaags},
		{"laag_attendees", ensureLaagAttendees},
		{"laag_images", ensureLaagImages},
		{"comments", ensureComments},
		{"laag_notifications", ensureNotifications},
		{"laag_notification_reads", ensureNotificationReads},
		{"audit_events", ensureAuditEvents},
	} {
		if err := step.fn(ctx, db); err != nil {
			problems = append(problems, step.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

// activeOnly limits a unique index to rows that have not been soft-removed,
// so history rows can repeat while at most one live row exists per key.
var activeOnly = bson.M{"is_removed": false}

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("profiles"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_profiles_email_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "is_deleted", Value: 1}, {Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_profiles_active_name"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("groups"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "is_deleted", Value: 1}},
			Options: options.Index().SetName("idx_groups_owner"),
		},
		{
			Keys:    bson.D{{Key: "group_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_groups_name"),
		},
	})
}

func ensureGroupMembers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("group_members"), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "group_member", Value: 1}},
			Options: options.Index().SetName("uniq_group_members_active").
				SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "group_member", Value: 1}, {Key: "is_removed", Value: 1}},
			Options: options.Index().SetName("idx_group_members_profile"),
		},
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "group_member", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_group_members_history"),
		},
	})
}

func ensureLaags(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("laags"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "when_start", Value: -1}},
			Options: options.Index().SetName("idx_laags_group_when"),
		},
		{
			Keys:    bson.D{{Key: "privacy", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "when_start", Value: -1}},
			Options: options.Index().SetName("idx_laags_privacy_when"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "is_deleted", Value: 1}},
			Options: options.Index().SetName("idx_laags_status"),
		},
	})
}

func ensureLaagAttendees(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("laag_attendees"), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "laag_id", Value: 1}, {Key: "attendee_id", Value: 1}},
			Options: options.Index().SetName("uniq_laag_attendees_active").
				SetUnique(true).SetPartialFilterExpression(activeOnly),
		},
		{
			Keys:    bson.D{{Key: "attendee_id", Value: 1}, {Key: "is_removed", Value: 1}},
			Options: options.Index().SetName("idx_laag_attendees_profile"),
		},
	})
}

func ensureLaagImages(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("laag_images"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "laag_id", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_laag_images_laag"),
		},
	})
}

func ensureComments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("comments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "laag_id", Value: 1}, {Key: "is_deleted", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_comments_laag"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("laag_notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "laag_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_laag_notifications_laag"),
		},
	})
}

func ensureNotificationReads(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("laag_notification_reads"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "notification_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_notification_reads_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notification_reads_inbox"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_time"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_type"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Partial bson.M `bson:"partialFilterExpression,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func partialSig(p interface{}) string {
	if p == nil {
		return ""
	}
	if m, ok := p.(bson.M); ok && len(m) == 0 {
		return ""
	}
	b, err := bson.MarshalExtJSON(p, false, false)
	if err != nil {
		return fmt.Sprintf("%v", p)
	}
	return string(b)
}

func sameBoolPtr(a, b *bool) bool {
	av := a != nil && *a
	bv := b != nil && *b
	return av == bv
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		var desiredPartial interface{}
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
			desiredPartial = m.Options.PartialFilterExpression
		}
		desiredSig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[desiredSig]; ok {
			same := sameBoolPtr(desiredUnique, ex.Unique) &&
				partialSig(desiredPartial) == partialSig(ex.Partial) &&
				(desiredName == "" || desiredName == ex.Name)
			if same {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", desiredSig))
				continue
			}
			// Options or name differ: drop & recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if isDuplicateKeyErr(err) && desiredUnique != nil && *desiredUnique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", desiredName),
				zap.String("keys", desiredSig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", created),
			zap.String("keys", desiredSig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.Bool("partial", desiredPartial != nil),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
