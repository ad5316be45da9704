package traffic

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
	Create(ctx context.Context, advisory *Advisory) error
	GetByID(ctx context.Context, id uuid.UUID) (*Advisory, error)
	ListActive(ctx context.Context, templeID string, now time.Time) ([]Advisory, error)
	Expire(ctx context.Context, advisory *Advisory, now time.Time) error
}

type repository struct {
	db     *gorm.DB
	feed   realtime.Feed
	logger *logger.Logger
}

func NewRepository(db *gorm.DB, feed realtime.Feed, log *logger.Logger) Repository {
	return &repository{db: db, feed: feed, logger: log}
}

func (r *repository) Create(ctx context.Context, advisory *Advisory) error {
	if err := r.db.WithContext(ctx).Create(advisory).Error; err != nil {
		return fmt.Errorf("failed to create traffic advisory: %w", err)
	}
	r.publish(ctx, realtime.ChangeInsert, advisory)
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Advisory, error) {
	var advisory Advisory
	err := r.db.WithContext(ctx).First(&advisory, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("traffic advisory")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get traffic advisory: %w", err)
	}
	return &advisory, nil
}

func (r *repository) ListActive(ctx context.Context, templeID string, now time.Time) ([]Advisory, error) {
	var advisories []Advisory
	err := r.db.WithContext(ctx).
		Where("temple_id = ? AND active_until > ?", templeID, now).
		Order("severity DESC, created_at DESC").
		Find(&advisories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list traffic advisories: %w", err)
	}
	return advisories, nil
}

// Expire ends an advisory immediately by pulling active_until to now
func (r *repository) Expire(ctx context.Context, advisory *Advisory, now time.Time) error {
	advisory.ActiveUntil = now
	if err := r.db.WithContext(ctx).Save(advisory).Error; err != nil {
		return fmt.Errorf("failed to expire traffic advisory: %w", err)
	}
	r.publish(ctx, realtime.ChangeUpdate, advisory)
	return nil
}

func (r *repository) publish(ctx context.Context, changeType realtime.ChangeType, advisory *Advisory) {
	data, err := json.Marshal(advisory)
	if err != nil {
		return
	}
	event := realtime.ChangeEvent{
		Type:      changeType,
		New:       data,
		Timestamp: time.Now().UTC(),
	}
	if err := r.feed.Publish(ctx, Advisory{}.TableName(), advisory.TempleID, event); err != nil {
		r.logger.ErrorWithContext(ctx, "Failed to publish change event", err,
			map[string]interface{}{"table": Advisory{}.TableName()})
	}
}
