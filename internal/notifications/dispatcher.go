package notifications

import (
	"context"
	"encoding/json"
	"time"

	"darshan/pkg/logger"
)

// Dispatcher publishes notifications onto the broker. Delivery is
// fire-and-forget: a failed publish is logged and swallowed so the
// triggering operation never fails or rolls back because of it.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification)
	Close() error
}

type dispatcher struct {
	producer Producer
	topic    string
	logger   *logger.Logger
}

func NewDispatcher(producer Producer, topic string, log *logger.Logger) Dispatcher {
	return &dispatcher{
		producer: producer,
		topic:    topic,
		logger:   log,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, n Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now().UTC()
	}
	if n.Type == "" || !n.Type.IsValid() {
		n.Type = TypeGeneral
	}
	if n.Priority == "" || !n.Priority.IsValid() {
		n.Priority = PriorityMedium
	}

	payload, err := json.Marshal(n)
	if err != nil {
		d.logger.ErrorWithContext(ctx, "Failed to marshal notification", err,
			map[string]interface{}{"user_id": n.UserID, "type": string(n.Type)})
		return
	}

	if err := d.producer.Send(d.topic, n.UserID, payload); err != nil {
		d.logger.ErrorWithContext(ctx, "Failed to dispatch notification", err,
			map[string]interface{}{"user_id": n.UserID, "type": string(n.Type)})
		return
	}

	d.logger.Info("Notification dispatched",
		"user_id", n.UserID, "type", string(n.Type), "priority", string(n.Priority))
}

func (d *dispatcher) Close() error {
	return d.producer.Close()
}

// noopDispatcher is used when the broker is disabled via config
type noopDispatcher struct {
	logger *logger.Logger
}

func NewNoopDispatcher(log *logger.Logger) Dispatcher {
	return &noopDispatcher{logger: log}
}

func (d *noopDispatcher) Dispatch(ctx context.Context, n Notification) {
	d.logger.Debug("Notification dispatch skipped, broker disabled",
		"user_id", n.UserID, "type", string(n.Type))
}

func (d *noopDispatcher) Close() error { return nil }
