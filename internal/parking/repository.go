package parking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"darshan/internal/realtime"
	"darshan/internal/shared/apperrors"
	"darshan/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, zone *ParkingZone) error
	GetByID(ctx context.Context, id uuid.UUID) (*ParkingZone, error)
	ListByTemple(ctx context.Context, templeID string) ([]ParkingZone, error)
	AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*ParkingZone, error)
}

type repository struct {
	db     *gorm.DB
	feed   realtime.Feed
	logger *logger.Logger
}

func NewRepository(db *gorm.DB, feed realtime.Feed, log *logger.Logger) Repository {
	return &repository{db: db, feed: feed, logger: log}
}

func (r *repository) Create(ctx context.Context, zone *ParkingZone) error {
	if err := r.db.WithContext(ctx).Create(zone).Error; err != nil {
		return fmt.Errorf("failed to create parking zone: %w", err)
	}
	r.publish(ctx, realtime.ChangeInsert, zone)
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*ParkingZone, error) {
	var zone ParkingZone
	err := r.db.WithContext(ctx).First(&zone, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("parking zone")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parking zone: %w", err)
	}
	return &zone, nil
}

func (r *repository) ListByTemple(ctx context.Context, templeID string) ([]ParkingZone, error) {
	var zones []ParkingZone
	err := r.db.WithContext(ctx).
		Where("temple_id = ?", templeID).
		Order("name ASC").
		Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list parking zones: %w", err)
	}
	return zones, nil
}

// AdjustAvailability applies an arrival (-1) or departure (+1) inside a
// transaction, clamping the result so availability never leaves
// [0, total].
func (r *repository) AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*ParkingZone, error) {
	var zone ParkingZone

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&zone, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("parking zone")
		}
		if err != nil {
			return fmt.Errorf("failed to load parking zone: %w", err)
		}

		available := zone.AvailableSpots + delta
		if available < 0 {
			available = 0
		}
		if available > zone.TotalSpots {
			available = zone.TotalSpots
		}

		zone.AvailableSpots = available
		zone.LastUpdated = time.Now().UTC()
		return tx.Save(&zone).Error
	})
	if err != nil {
		return nil, err
	}

	r.publish(ctx, realtime.ChangeUpdate, &zone)
	return &zone, nil
}

func (r *repository) publish(ctx context.Context, changeType realtime.ChangeType, zone *ParkingZone) {
	data, err := json.Marshal(zone)
	if err != nil {
		return
	}
	event := realtime.ChangeEvent{
		Type:      changeType,
		New:       data,
		Timestamp: time.Now().UTC(),
	}
	if err := r.feed.Publish(ctx, ParkingZone{}.TableName(), zone.TempleID, event); err != nil {
		r.logger.ErrorWithContext(ctx, "Failed to publish change event", err,
			map[string]interface{}{"table": ParkingZone{}.TableName()})
	}
}
