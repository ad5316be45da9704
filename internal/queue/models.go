package queue

import (
	"encoding/json"
	"time"

	"darshan/internal/realtime"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a queue entry
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo enforces the one-way lifecycle: an active entry may
// complete or cancel; terminal entries never change again.
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	return target == StatusCompleted || target == StatusCancelled
}

// QueueEntry is one pilgrim's place in a temple's virtual darshan queue.
// LastUpdated is the last-writer timestamp that gates concurrent merges.
type QueueEntry struct {
	ID                   uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingID            uuid.UUID  `json:"booking_id" gorm:"type:uuid;not null;uniqueIndex"`
	UserID               uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	TempleID             string     `json:"temple_id" gorm:"not null;index"`
	Position             int        `json:"position" gorm:"not null"`
	Status               Status     `json:"status" gorm:"not null;default:'active'"`
	EstimatedWaitMinutes int        `json:"estimated_wait_minutes" gorm:"not null;default:0"`
	JoinedAt             time.Time  `json:"joined_at" gorm:"not null"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	LastUpdated          time.Time  `json:"last_updated" gorm:"not null;index"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (QueueEntry) TableName() string {
	return "queue_entries"
}

// RecordKey keys live views by booking so one booking holds one slot
func (e QueueEntry) RecordKey() string {
	return e.BookingID.String()
}

// RecordVersion is the merge gate timestamp
func (e QueueEntry) RecordVersion() time.Time {
	return e.LastUpdated
}

// DecodeEntry turns a change-event row payload back into a QueueEntry
func DecodeEntry(data json.RawMessage) (realtime.Record, error) {
	var entry QueueEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// QueueStatusResponse is the per-booking view returned to pilgrims
type QueueStatusResponse struct {
	BookingID            string     `json:"booking_id"`
	TempleID             string     `json:"temple_id"`
	Position             int        `json:"position"`
	Status               Status     `json:"status"`
	EstimatedWaitMinutes int        `json:"estimated_wait_minutes"`
	AheadInQueue         int        `json:"ahead_in_queue"`
	JoinedAt             time.Time  `json:"joined_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	LastUpdated          time.Time  `json:"last_updated"`
}

// TempleOverviewResponse summarises one temple's queue for display boards.
// Entries are the active entries ascending by position; AverageWaitMinutes
// is their mean estimated wait rounded to the nearest minute, 0 when the
// queue is empty.
type TempleOverviewResponse struct {
	TempleID           string       `json:"temple_id"`
	TotalInQueue       int          `json:"total_in_queue"`
	NowServingBooking  *string      `json:"now_serving_booking,omitempty"`
	AverageWaitMinutes int          `json:"average_wait_minutes"`
	Entries            []QueueEntry `json:"entries"`
	Live               bool         `json:"live"`
	AsOf               time.Time    `json:"as_of"`
}

// JoinQueueRequest is the internal request used when a confirmed booking
// is admitted to the queue.
type JoinQueueRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	UserID    string `json:"user_id" validate:"required,uuid"`
	TempleID  string `json:"temple_id" validate:"required,min=2,max=64"`
}
