package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"darshan/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Feed is the change-feed transport. Repositories publish an event after
// every committed mutation; consumers subscribe per table (optionally
// narrowed by a filter such as a temple id).
type Feed interface {
	Publish(ctx context.Context, table, filter string, event ChangeEvent) error
	Subscribe(ctx context.Context, table, filter string) (*Subscription, error)
}

type redisFeed struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisFeed(client *redis.Client, log *logger.Logger) Feed {
	return &redisFeed{
		client: client,
		logger: log,
	}
}

// Publish sends the event on both the table-wide channel and, when a filter
// is given, the narrowed channel, so consumers can subscribe at either
// granularity.
func (f *redisFeed) Publish(ctx context.Context, table, filter string, event ChangeEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Table = table

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := f.client.Publish(ctx, ChannelFor(table, ""), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	if filter != "" {
		if err := f.client.Publish(ctx, ChannelFor(table, filter), payload).Err(); err != nil {
			return fmt.Errorf("failed to publish change event: %w", err)
		}
	}

	return nil
}

// Subscribe opens a subscription on the channel for table/filter. The
// returned subscription is Live only after the broker has acknowledged the
// subscribe; the blocking Receive below is that acknowledgement.
func (f *redisFeed) Subscribe(ctx context.Context, table, filter string) (*Subscription, error) {
	channel := ChannelFor(table, filter)

	sub := &Subscription{
		channel: channel,
		events:  make(chan ChangeEvent, 64),
		state:   StateInitializing,
	}

	sub.pubsub = f.client.Subscribe(ctx, channel)

	// Receive blocks until the SUBSCRIBE confirmation arrives
	if _, err := sub.pubsub.Receive(ctx); err != nil {
		sub.pubsub.Close()
		sub.setState(StateClosed)
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}
	sub.setState(StateLive)

	go f.pump(sub)

	return sub, nil
}

// pump decodes raw messages into change events until the pubsub closes
func (f *redisFeed) pump(sub *Subscription) {
	defer close(sub.events)
	defer sub.setState(StateClosed)

	for msg := range sub.pubsub.Channel() {
		var event ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			f.logger.Warn("Dropping malformed change event",
				"channel", sub.channel, "error", err.Error())
			continue
		}
		if !event.Type.IsValid() {
			f.logger.Warn("Dropping change event with unknown type",
				"channel", sub.channel, "type", string(event.Type))
			continue
		}

		select {
		case sub.events <- event:
		default:
			// Slow consumer: drop rather than block the feed
			f.logger.Warn("Change event dropped, subscriber buffer full",
				"channel", sub.channel)
		}
	}
}
