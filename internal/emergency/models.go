package emergency

import (
	"time"

	"github.com/google/uuid"
)

// IncidentType categorises an emergency report
type IncidentType string

const (
	TypeMedical  IncidentType = "medical"
	TypeSecurity IncidentType = "security"
	TypeFire     IncidentType = "fire"
	TypeCrowd    IncidentType = "crowd"
	TypeOther    IncidentType = "other"
)

func (t IncidentType) IsValid() bool {
	switch t {
	case TypeMedical, TypeSecurity, TypeFire, TypeCrowd, TypeOther:
		return true
	}
	return false
}

// IncidentStatus tracks the response lifecycle
type IncidentStatus string

const (
	StatusReported     IncidentStatus = "reported"
	StatusAcknowledged IncidentStatus = "acknowledged"
	StatusResolved     IncidentStatus = "resolved"
)

// Incident is an emergency reported on temple grounds
type Incident struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReportedBy  uuid.UUID      `json:"reported_by" gorm:"type:uuid;not null;index"`
	TempleID    string         `json:"temple_id" gorm:"not null;index"`
	Type        IncidentType   `json:"type" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Location    string         `json:"location,omitempty"`
	Status      IncidentStatus `json:"status" gorm:"not null;default:'reported'"`
	ReportedAt  time.Time      `json:"reported_at" gorm:"not null"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy  *uuid.UUID     `json:"resolved_by,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Incident) TableName() string {
	return "emergency_incidents"
}

// ReportIncidentRequest files a new emergency report
type ReportIncidentRequest struct {
	TempleID    string       `json:"temple_id" validate:"required,min=2,max=64"`
	Type        IncidentType `json:"type" validate:"required,oneof=medical security fire crowd other"`
	Description string       `json:"description" validate:"required,min=10,max=2000"`
	Location    string       `json:"location" validate:"omitempty,max=200"`
}
