package bookings

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
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	UpdateStatus(ctx context.Context, booking *Booking, status Status) error
}

type repository struct {
	db     *gorm.DB
	feed   realtime.Feed
	logger *logger.Logger
}

func NewRepository(db *gorm.DB, feed realtime.Feed, log *logger.Logger) Repository {
	return &repository{db: db, feed: feed, logger: log}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	r.publish(ctx, realtime.ChangeInsert, booking, nil)
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("booking")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) UpdateStatus(ctx context.Context, booking *Booking, status Status) error {
	old := *booking
	booking.Status = status
	if err := r.db.WithContext(ctx).Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	r.publish(ctx, realtime.ChangeUpdate, booking, &old)
	return nil
}

func (r *repository) publish(ctx context.Context, changeType realtime.ChangeType, booking, old *Booking) {
	event := realtime.ChangeEvent{
		Type:      changeType,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(booking)
	if err != nil {
		return
	}
	event.New = data
	if old != nil {
		if oldData, err := json.Marshal(old); err == nil {
			event.Old = oldData
		}
	}

	if err := r.feed.Publish(ctx, Booking{}.TableName(), booking.TempleID, event); err != nil {
		r.logger.ErrorWithContext(ctx, "Failed to publish change event", err,
			map[string]interface{}{"table": Booking{}.TableName()})
	}
}
