package crowd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"darshan/internal/realtime"
	"darshan/pkg/logger"

	"gorm.io/gorm"
)

// Repository persists crowd readings and echoes inserts onto the change
// feed so dashboards update without polling.
type Repository interface {
	Create(ctx context.Context, reading *CrowdReading) error
	GetCurrent(ctx context.Context, templeID string) (*CrowdReading, error)
	GetHistory(ctx context.Context, templeID string, since time.Time, limit int) ([]CrowdReading, error)
	AverageCount(ctx context.Context, templeID string, since time.Time) (float64, error)
}

type repository struct {
	db     *gorm.DB
	feed   realtime.Feed
	logger *logger.Logger
}

func NewRepository(db *gorm.DB, feed realtime.Feed, log *logger.Logger) Repository {
	return &repository{db: db, feed: feed, logger: log}
}

func (r *repository) Create(ctx context.Context, reading *CrowdReading) error {
	if err := r.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to create crowd reading: %w", err)
	}

	data, err := json.Marshal(reading)
	if err != nil {
		r.logger.ErrorWithContext(ctx, "Failed to marshal change event row", err,
			map[string]interface{}{"table": CrowdReading{}.TableName()})
		return nil
	}
	event := realtime.ChangeEvent{
		Type:      realtime.ChangeInsert,
		New:       data,
		Timestamp: time.Now().UTC(),
	}
	if err := r.feed.Publish(ctx, CrowdReading{}.TableName(), reading.TempleID, event); err != nil {
		r.logger.ErrorWithContext(ctx, "Failed to publish change event", err,
			map[string]interface{}{"table": CrowdReading{}.TableName()})
	}

	return nil
}

// GetCurrent returns the freshest reading: latest recorded_at, with the
// highest id breaking ties. Returns nil without error when the temple has
// no readings.
func (r *repository) GetCurrent(ctx context.Context, templeID string) (*CrowdReading, error) {
	var reading CrowdReading
	err := r.db.WithContext(ctx).
		Where("temple_id = ?", templeID).
		Order("recorded_at DESC, id DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current crowd reading: %w", err)
	}
	return &reading, nil
}

// GetHistory returns readings since the cutoff in ascending recorded order
func (r *repository) GetHistory(ctx context.Context, templeID string, since time.Time, limit int) ([]CrowdReading, error) {
	var readings []CrowdReading
	err := r.db.WithContext(ctx).
		Where("temple_id = ? AND recorded_at >= ?", templeID, since).
		Order("recorded_at ASC, id ASC").
		Limit(limit).
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get crowd history: %w", err)
	}
	return readings, nil
}

func (r *repository) AverageCount(ctx context.Context, templeID string, since time.Time) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).Model(&CrowdReading{}).
		Select("AVG(count)").
		Where("temple_id = ? AND recorded_at >= ?", templeID, since).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to average crowd counts: %w", err)
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
