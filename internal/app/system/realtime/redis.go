package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ChannelPrefix is prepended to the user id to form the pub/sub channel.
const ChannelPrefix = "laag:notifications:"

// RedisBroker delivers events across processes with Redis pub/sub.
type RedisBroker struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisBroker connects to addr and verifies the connection.
func NewRedisBroker(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &RedisBroker{client: client, log: logger}, nil
}

// Channel returns the pub/sub channel for userID.
func Channel(userID string) string {
	return ChannelPrefix + userID
}

// Ping checks the Redis connection.
func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Publish sends ev as JSON on the user's channel.
func (b *RedisBroker) Publish(ctx context.Context, userID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, Channel(userID), payload).Err()
}

// Subscribe listens on the user's channel until cancel is called or ctx ends.
func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error) {
	pubsub := b.client.Subscribe(ctx, Channel(userID))
	// wait for the subscription confirmation so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", Channel(userID), err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("realtime: bad payload", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			_ = pubsub.Close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
		case <-stop:
		}
	}()
	return out, cancel, nil
}

// Close closes the client.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
