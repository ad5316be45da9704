package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeType identifies the kind of mutation carried by a change event
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// ChangeEvent is the wire format published on the change feed whenever a
// store mutation commits. New carries the row after the change, Old the row
// before it (nil for inserts).
type ChangeEvent struct {
	Table     string          `json:"table"`
	Type      ChangeType      `json:"type"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// SubscriptionState tracks the lifecycle of a feed subscription.
// Subscriptions start Initializing, move to Live once the broker
// acknowledges the subscribe, and end Closed.
type SubscriptionState string

const (
	StateInitializing SubscriptionState = "initializing"
	StateLive         SubscriptionState = "live"
	StateClosed       SubscriptionState = "closed"
)

// ChannelFor builds the feed channel name for a table and optional filter
func ChannelFor(table, filter string) string {
	if filter == "" {
		return fmt.Sprintf("changes:%s", table)
	}
	return fmt.Sprintf("changes:%s:%s", table, filter)
}
