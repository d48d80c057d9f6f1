// Package transitions moves laags out of Planning and notifies attendees.
//
// A transition is three writes: the status change, one laag_notifications
// row, and one unread read-row per active attendee. When the deployment
// supports transactions the three commit together. On a standalone server
// they run in sequence and a failed fan-out is logged without undoing the
// status change. A failed notification insert or fan-out is logged without
// undoing the status change. Realtime events are sent only after the writes
// succeed.
package transitions

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/laag/internal/app/policy/laagpolicy"
	attendeestore "github.com/dalemusser/laag/internal/app/store/attendees"
	imagestore "github.com/dalemusser/laag/internal/app/store/images"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	notificationstore "github.com/dalemusser/laag/internal/app/store/notifications"
	"github.com/dalemusser/laag/internal/app/system/authz"
	"github.com/dalemusser/laag/internal/app/system/realtime"
	"github.com/dalemusser/laag/internal/app/system/txn"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CompleteInput carries everything written when a laag is completed.
type CompleteInput struct {
	laagstore.Completion

	// Attendees, when non-nil, is the final attendee set.
	Attendees []primitive.ObjectID
	// Images are blob paths already stored for this laag.
	Images []string
}

// Outcome describes a finished transition.
type Outcome struct {
	Laag         models.Laag             `json:"laag"`
	Notification models.LaagNotification `json:"notification"`
	Recipients   []primitive.ObjectID    `json:"recipients"`
	Attendees    attendeestore.Result    `json:"attendees"`
	// FanOutFailed is set when the notification or its read-rows could not
	// be written outside a transaction. The status change stands.
	FanOutFailed bool `json:"fan_out_failed,omitempty"`
}

// notifier is the part of the notification store a transition writes to.
type notifier interface {
	Create(ctx context.Context, laagID, groupID primitive.ObjectID, status models.LaagStatus) (models.LaagNotification, error)
	FanOut(ctx context.Context, notificationID primitive.ObjectID, userIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Service runs transitions against one database.
type Service struct {
	db     *mongo.Database
	log    *zap.Logger
	broker realtime.Broker

	laags     *laagstore.Store
	attendees *attendeestore.Store
	images    *imagestore.Store
	notes     notifier

	// inTxn runs the writes; txn.Run outside tests.
	inTxn func(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error
}

// New builds a Service. broker may be nil, in which case no realtime
// events are sent.
func New(db *mongo.Database, broker realtime.Broker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		log:       logger,
		broker:    broker,
		laags:     laagstore.New(db),
		attendees: attendeestore.New(db),
		images:    imagestore.New(db),
		notes:     notificationstore.New(db),
		inTxn:     txn.Run,
	}
}

// Cancel moves a planning laag to Cancelled.
func (s *Service) Cancel(ctx context.Context, laagID primitive.ObjectID, actor authz.Actor) (Outcome, error) {
	return s.run(ctx, laagID, actor, models.StatusCancelled, nil)
}

// Complete moves a planning laag to Completed and applies the completion
// fields, the final attendee set, and any uploaded images.
func (s *Service) Complete(ctx context.Context, laagID primitive.ObjectID, actor authz.Actor, in CompleteInput) (Outcome, error) {
	return s.run(ctx, laagID, actor, models.StatusCompleted, &in)
}

func (s *Service) run(ctx context.Context, laagID primitive.ObjectID, actor authz.Actor, to models.LaagStatus, in *CompleteInput) (Outcome, error) {
	l, err := s.laags.GetByID(ctx, laagID)
	if err != nil {
		return Outcome{}, err
	}
	if err := laagpolicy.CanChangeStatus(actor, l, to); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err = s.inTxn(ctx, s.db.Client(), s.log, func(ctx context.Context) error {
		// WithTransaction may call this more than once.
		out = Outcome{}

		var comp *laagstore.Completion
		if in != nil {
			comp = &in.Completion
		}
		if err := s.laags.SetStatus(ctx, l.ID, to, comp); err != nil {
			if errors.Is(err, laagstore.ErrNotPlanning) {
				return laagpolicy.ErrTerminalStatus
			}
			return err
		}

		if in != nil {
			if in.Attendees != nil {
				res, err := s.attendees.Reconcile(ctx, l.ID, in.Attendees)
				if err != nil {
					return err
				}
				out.Attendees = res
			}
			if err := s.images.AddMany(ctx, l.ID, in.Images, actor.ID); err != nil {
				return err
			}
		}

		n, err := s.notes.Create(ctx, l.ID, l.GroupID, to)
		if err != nil {
			if txn.Active(ctx) {
				return err
			}
			s.log.Warn("notification insert failed; status change kept",
				zap.String("laag_id", l.ID.Hex()),
				zap.Error(err))
			out.FanOutFailed = true
			return nil
		}
		out.Notification = n

		recipients, err := s.fanOut(ctx, l.ID, n.ID)
		if err != nil {
			if txn.Active(ctx) {
				return err
			}
			s.log.Warn("notification fan-out failed; status change kept",
				zap.String("laag_id", l.ID.Hex()),
				zap.String("notification_id", n.ID.Hex()),
				zap.Error(err))
			out.FanOutFailed = true
			return nil
		}
		out.Recipients = recipients
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	if updated, err := s.laags.GetByID(ctx, l.ID); err == nil {
		out.Laag = updated
	} else {
		s.log.Warn("reload after transition failed", zap.String("laag_id", l.ID.Hex()), zap.Error(err))
		l.Status = to
		out.Laag = l
	}

	s.publish(ctx, out)
	return out, nil
}

func (s *Service) fanOut(ctx context.Context, laagID, notificationID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids, err := s.attendees.ActiveAttendeeIDs(ctx, laagID)
	if err != nil {
		return nil, err
	}
	return s.notes.FanOut(ctx, notificationID, ids)
}

func (s *Service) publish(ctx context.Context, out Outcome) {
	if s.broker == nil || len(out.Recipients) == 0 {
		return
	}
	users := make([]string, 0, len(out.Recipients))
	for _, id := range out.Recipients {
		users = append(users, id.Hex())
	}
	ev := realtime.Event{
		Type:           realtime.EventNotificationCreated,
		NotificationID: out.Notification.ID.Hex(),
		LaagID:         out.Laag.ID.Hex(),
		LaagStatus:     string(out.Notification.LaagStatus),
		At:             time.Now().UTC(),
	}
	if failed := realtime.PublishAll(ctx, s.broker, users, ev); failed > 0 {
		s.log.Warn("realtime publish failed for some recipients",
			zap.String("notification_id", out.Notification.ID.Hex()),
			zap.Int("failed", failed),
			zap.Int("recipients", len(users)))
	}
}
