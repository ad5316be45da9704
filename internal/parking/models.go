package parking

import (
	"time"

	"github.com/google/uuid"
)

// ParkingZone tracks live availability for one parking area near a temple.
// AvailableSpots is always clamped to [0, TotalSpots] no matter how many
// arrival or departure events race in.
type ParkingZone struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TempleID       string    `json:"temple_id" gorm:"not null;index"`
	Name           string    `json:"name" gorm:"not null"`
	TotalSpots     int       `json:"total_spots" gorm:"not null"`
	AvailableSpots int       `json:"available_spots" gorm:"not null"`
	LastUpdated    time.Time `json:"last_updated" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ParkingZone) TableName() string {
	return "parking_zones"
}

// OccupancyPercent reports how full the zone is
func (z *ParkingZone) OccupancyPercent() float64 {
	if z.TotalSpots <= 0 {
		return 0
	}
	occupied := z.TotalSpots - z.AvailableSpots
	return float64(occupied) / float64(z.TotalSpots) * 100
}

// CreateZoneRequest registers a new parking zone
type CreateZoneRequest struct {
	TempleID   string `json:"temple_id" validate:"required,min=2,max=64"`
	Name       string `json:"name" validate:"required,min=2,max=128"`
	TotalSpots int    `json:"total_spots" validate:"required,gte=1"`
}
