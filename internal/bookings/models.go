package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Status is the booking lifecycle state. Only a successful payment moves
// a booking to confirmed, and only confirmed bookings enter the queue.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCompleted || target == StatusCancelled
	}
	return false
}

// Slot is the requested darshan window
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotEvening   Slot = "evening"
)

// Booking is a pilgrim's darshan reservation at a temple
type Booking struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	TempleID  string    `json:"temple_id" gorm:"not null;index"`
	VisitDate time.Time `json:"visit_date" gorm:"not null"`
	Slot      Slot      `json:"slot" gorm:"not null"`
	PartySize int       `json:"party_size" gorm:"not null;default:1"`
	Status    Status    `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// CreateBookingRequest reserves a darshan slot
type CreateBookingRequest struct {
	TempleID  string `json:"temple_id" validate:"required,min=2,max=64"`
	VisitDate string `json:"visit_date" validate:"required"`
	Slot      Slot   `json:"slot" validate:"required,oneof=morning afternoon evening"`
	PartySize int    `json:"party_size" validate:"required,gte=1,lte=10"`
}
