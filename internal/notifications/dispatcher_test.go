package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"darshan/pkg/logger"

	"github.com/stretchr/testify/assert"
)

type captureProducer struct {
	topic   string
	key     string
	payload []byte
	err     error
	sent    int
}

func (p *captureProducer) Send(topic, key string, payload []byte) error {
	p.sent++
	p.topic = topic
	p.key = key
	p.payload = payload
	return p.err
}

func (p *captureProducer) Close() error { return nil }

func TestDispatchKeysByUser(t *testing.T) {
	producer := &captureProducer{}
	d := NewDispatcher(producer, "notifications", logger.New())

	d.Dispatch(context.Background(), Notification{
		UserID:   "user-42",
		Type:     TypeQueueUpdate,
		Title:    "Queue Update",
		Message:  "You are now 3rd in line",
		Priority: PriorityMedium,
	})

	assert.Equal(t, 1, producer.sent)
	assert.Equal(t, "notifications", producer.topic)
	assert.Equal(t, "user-42", producer.key)

	var got Notification
	assert.NoError(t, json.Unmarshal(producer.payload, &got))
	assert.Equal(t, TypeQueueUpdate, got.Type)
	assert.False(t, got.Timestamp.IsZero())
}

func TestDispatchDefaultsTypeAndPriority(t *testing.T) {
	producer := &captureProducer{}
	d := NewDispatcher(producer, "notifications", logger.New())

	d.Dispatch(context.Background(), Notification{
		UserID:  "user-1",
		Title:   "Hello",
		Message: "World",
	})

	var got Notification
	assert.NoError(t, json.Unmarshal(producer.payload, &got))
	assert.Equal(t, TypeGeneral, got.Type)
	assert.Equal(t, PriorityMedium, got.Priority)
}

func TestDispatchSwallowsProducerErrors(t *testing.T) {
	producer := &captureProducer{err: errors.New("broker down")}
	d := NewDispatcher(producer, "notifications", logger.New())

	// Must not panic or surface the error
	d.Dispatch(context.Background(), Notification{UserID: "user-1", Type: TypeBooking})
	assert.Equal(t, 1, producer.sent)
}

func TestNoopDispatcher(t *testing.T) {
	d := NewNoopDispatcher(logger.New())
	d.Dispatch(context.Background(), Notification{UserID: "user-1"})
	assert.NoError(t, d.Close())
}

func TestTypeAndPriorityValidation(t *testing.T) {
	assert.True(t, TypeCrowdAlert.IsValid())
	assert.False(t, Type("push").IsValid())
	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, Priority("urgent").IsValid())
}
