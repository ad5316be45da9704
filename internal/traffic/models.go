package traffic

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades how disruptive an advisory is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Advisory is a time-bound traffic notice for routes around a temple
type Advisory struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TempleID    string    `json:"temple_id" gorm:"not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Message     string    `json:"message" gorm:"not null"`
	Severity    Severity  `json:"severity" gorm:"not null;default:'info'"`
	Route       string    `json:"route,omitempty"`
	ActiveUntil time.Time `json:"active_until" gorm:"not null;index"`
	CreatedBy   uuid.UUID `json:"created_by" gorm:"type:uuid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Advisory) TableName() string {
	return "traffic_advisories"
}

// IsActive reports whether the advisory is still in force
func (a *Advisory) IsActive(now time.Time) bool {
	return a.ActiveUntil.After(now)
}

// CreateAdvisoryRequest publishes a new advisory
type CreateAdvisoryRequest struct {
	TempleID    string   `json:"temple_id" validate:"required,min=2,max=64"`
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Message     string   `json:"message" validate:"required,min=10,max=2000"`
	Severity    Severity `json:"severity" validate:"required,oneof=info moderate severe"`
	Route       string   `json:"route" validate:"omitempty,max=200"`
	ActiveHours int      `json:"active_hours" validate:"required,gte=1,lte=168"`
}
