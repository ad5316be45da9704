package realtime

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// Subscription is a live handle onto one feed channel. Events are delivered
// on the Events channel until Close is called or the underlying connection
// drops, after which the channel is closed and the state becomes Closed.
type Subscription struct {
	channel string
	pubsub  *redis.PubSub
	events  chan ChangeEvent

	mu    sync.RWMutex
	state SubscriptionState

	closeOnce sync.Once
}

// Channel returns the feed channel this subscription listens on
func (s *Subscription) Channel() string {
	return s.channel
}

// Events returns the stream of decoded change events
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

// State returns the current lifecycle state
func (s *Subscription) State() SubscriptionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Subscription) setState(state SubscriptionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = state
}

// Close tears down the subscription. Safe to call multiple times.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.state = StateClosed
		s.mu.Unlock()
		if s.pubsub != nil {
			err = s.pubsub.Close()
		}
	})
	return err
}
