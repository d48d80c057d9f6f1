package realtime

import (
	"context"
	"sync"
)

// LocalBroker delivers events within a single process.
type LocalBroker struct {
	mu     sync.Mutex
	subs   map[string]map[*localSub]struct{}
	closed bool
}

type localSub struct {
	ch   chan Event
	once sync.Once
}

// NewLocalBroker returns an empty broker.
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[*localSub]struct{})}
}

// Publish delivers ev to every current subscriber of userID without blocking.
func (b *LocalBroker) Publish(ctx context.Context, userID string, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[userID] {
		select {
		case s.ch <- ev:
		default:
			// subscriber is behind; it will refetch on the next event
		}
	}
	return nil
}

// Subscribe registers a subscriber for userID.
func (b *LocalBroker) Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error) {
	s := &localSub{ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}, nil
	}
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*localSub]struct{})
	}
	b.subs[userID][s] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		s.once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], s)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			b.mu.Unlock()
			close(s.ch)
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return s.ch, cancel, nil
}

// Close ends every subscription.
func (b *LocalBroker) Close() error {
	b.mu.Lock()
	all := b.subs
	b.subs = make(map[string]map[*localSub]struct{})
	b.closed = true
	b.mu.Unlock()

	for _, set := range all {
		for s := range set {
			s.once.Do(func() { close(s.ch) })
		}
	}
	return nil
}

// subscriberCount is used by tests.
func (b *LocalBroker) subscriberCount(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}
