// Package realtime pushes per-user events (new notifications) to connected
// clients. Clients treat every event as a signal to refetch; events carry
// ids only and are never the source of truth.
package realtime

import (
	"context"
	"time"
)

// Event types.
const (
	EventNotificationCreated = "notification.created"
)

// Event is delivered to one user.
type Event struct {
	Type           string    `json:"type"`
	NotificationID string    `json:"notification_id,omitempty"`
	LaagID         string    `json:"laag_id,omitempty"`
	LaagStatus     string    `json:"laag_status,omitempty"`
	At             time.Time `json:"at"`
}

// Broker fans events out to subscribers of a user id.
//
// Subscribe returns a channel that is closed when the returned cancel func
// is called or ctx ends. Slow subscribers may miss events.
type Broker interface {
	Publish(ctx context.Context, userID string, ev Event) error
	Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error)
	Close() error
}

// subscriberBuffer is the per-subscriber channel size.
const subscriberBuffer = 16

// PublishAll publishes ev to every user and returns how many failed.
func PublishAll(ctx context.Context, b Broker, userIDs []string, ev Event) (failed int) {
	for _, id := range userIDs {
		if err := b.Publish(ctx, id, ev); err != nil {
			failed++
		}
	}
	return failed
}
