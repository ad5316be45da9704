package notifications

import "time"

// Type categorises a notification for client-side routing
type Type string

const (
	TypeBooking     Type = "booking"
	TypeQueueUpdate Type = "queue_update"
	TypeCrowdAlert  Type = "crowd_alert"
	TypeEmergency   Type = "emergency"
	TypeTraffic     Type = "traffic"
	TypeGeneral     Type = "general"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeBooking, TypeQueueUpdate, TypeCrowdAlert, TypeEmergency, TypeTraffic, TypeGeneral:
		return true
	}
	return false
}

// Priority controls delivery urgency downstream
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Notification is the record produced onto the notification topic. Messages
// are keyed by UserID so one user's notifications stay ordered.
type Notification struct {
	UserID    string                 `json:"userId"`
	Type      Type                   `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Priority  Priority               `json:"priority"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
