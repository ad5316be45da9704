package crowd

import (
	"time"
)

// Level buckets a reading for display and alerting
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

func (l Level) IsValid() bool {
	switch l {
	case LevelLow, LevelModerate, LevelHigh:
		return true
	}
	return false
}

// Source identifies where a reading came from
type Source string

const (
	SourceStaff  Source = "staff"
	SourceSensor Source = "sensor"
)

func (s Source) IsValid() bool {
	return s == SourceStaff || s == SourceSensor
}

// CrowdReading is one observation of how many pilgrims are on the temple
// grounds. The auto-incremented ID breaks ties between readings recorded
// at the same instant. CapacityPercentage is null when the occupancy could
// not be derived.
type CrowdReading struct {
	ID                 int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TempleID           string    `json:"temple_id" gorm:"not null;index:idx_crowd_temple_recorded"`
	Count              int       `json:"count" gorm:"not null"`
	Level              Level     `json:"level" gorm:"not null"`
	CapacityPercentage *float64  `json:"capacity_percentage"`
	Source             Source    `json:"source" gorm:"not null;default:'staff'"`
	RecordedAt         time.Time `json:"recorded_at" gorm:"not null;index:idx_crowd_temple_recorded"`
	CreatedAt          time.Time `json:"created_at"`
}

func (CrowdReading) TableName() string {
	return "crowd_readings"
}

// RecordReadingRequest ingests a new observation
type RecordReadingRequest struct {
	Count      int        `json:"count" validate:"gte=0"`
	Source     Source     `json:"source" validate:"omitempty,oneof=staff sensor"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// CurrentCrowdResponse reports the freshest reading for a temple. Current
// is null when the temple has no readings at all.
type CurrentCrowdResponse struct {
	TempleID string        `json:"temple_id"`
	Current  *CrowdReading `json:"current"`
	AsOf     time.Time     `json:"as_of"`
}

// Prediction is one day's crowd forecast. Confidence is always strictly
// between 0 and 1.
type Prediction struct {
	Date           string  `json:"date"`
	PredictedCount int     `json:"predicted_count"`
	PredictedLevel Level   `json:"predicted_level"`
	Confidence     float64 `json:"confidence"`
}

// PredictionsResponse lists forecasts in ascending date order
type PredictionsResponse struct {
	TempleID    string       `json:"temple_id"`
	Predictions []Prediction `json:"predictions"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// templeCapacities drives level bucketing per temple
var templeCapacities = map[string]int{
	"somnath":  8000,
	"dwarka":   6000,
	"ambaji":   5000,
	"pavagadh": 4000,
}

const defaultCapacity = 5000

// CapacityFor returns the assumed grounds capacity for a temple
func CapacityFor(templeID string) int {
	if capacity, ok := templeCapacities[templeID]; ok {
		return capacity
	}
	return defaultCapacity
}

// LevelForCount buckets a headcount against the temple's capacity
func LevelForCount(count int, capacity int) Level {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	occupancy := float64(count) / float64(capacity)
	switch {
	case occupancy < 0.4:
		return LevelLow
	case occupancy < 0.7:
		return LevelModerate
	default:
		return LevelHigh
	}
}
