package queue

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

// Repository persists queue entries and echoes every committed mutation
// onto the change feed.
type Repository interface {
	Create(ctx context.Context, entry *QueueEntry) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*QueueEntry, error)
	ListActive(ctx context.Context, templeID string) ([]QueueEntry, error)
	ListAllActive(ctx context.Context) ([]QueueEntry, error)
	CountActive(ctx context.Context, templeID string) (int64, error)
	UpdateGated(ctx context.Context, old, updated *QueueEntry) (bool, error)
	Advance(ctx context.Context, templeID string, minutesPerVisitor int) (*QueueEntry, []QueueEntry, error)
	Cancel(ctx context.Context, entry *QueueEntry, minutesPerVisitor int) ([]QueueEntry, error)
}

type repository struct {
	db     *gorm.DB
	feed   realtime.Feed
	logger *logger.Logger
}

func NewRepository(db *gorm.DB, feed realtime.Feed, log *logger.Logger) Repository {
	return &repository{db: db, feed: feed, logger: log}
}

func (r *repository) Create(ctx context.Context, entry *QueueEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}

	r.publish(ctx, realtime.ChangeInsert, entry, nil)
	return nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*QueueEntry, error) {
	var entry QueueEntry
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("queue entry")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}
	return &entry, nil
}

func (r *repository) ListActive(ctx context.Context, templeID string) ([]QueueEntry, error) {
	var entries []QueueEntry
	err := r.db.WithContext(ctx).
		Where("temple_id = ? AND status = ?", templeID, StatusActive).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return entries, nil
}

func (r *repository) ListAllActive(ctx context.Context) ([]QueueEntry, error) {
	var entries []QueueEntry
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Order("temple_id ASC, position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return entries, nil
}

func (r *repository) CountActive(ctx context.Context, templeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&QueueEntry{}).
		Where("temple_id = ? AND status = ?", templeID, StatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count queue entries: %w", err)
	}
	return count, nil
}

// UpdateGated writes the updated entry only if the stored row is not newer
// than the patch. A stale patch is discarded silently: no rows change, no
// event is published, and no error is returned.
func (r *repository) UpdateGated(ctx context.Context, old, updated *QueueEntry) (bool, error) {
	result := r.db.WithContext(ctx).Model(&QueueEntry{}).
		Where("id = ? AND last_updated <= ?", updated.ID, updated.LastUpdated).
		Select("position", "status", "estimated_wait_minutes", "completed_at", "last_updated").
		Updates(updated)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update queue entry: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.LogStaleWrite(ctx, "queue_entries", updated.BookingID.String())
		return false, nil
	}

	r.publish(ctx, realtime.ChangeUpdate, updated, old)
	return true, nil
}

// Advance completes the head of the temple's queue and moves everyone else
// up one position, recomputing their wait estimates. Returns the completed
// entry and the entries that moved.
func (r *repository) Advance(ctx context.Context, templeID string, minutesPerVisitor int) (*QueueEntry, []QueueEntry, error) {
	var completed QueueEntry
	var advanced []QueueEntry
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("temple_id = ? AND status = ?", templeID, StatusActive).
			Order("position ASC").
			First(&completed).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("queue entry")
		}
		if err != nil {
			return fmt.Errorf("failed to find queue head: %w", err)
		}

		completed.Status = StatusCompleted
		completed.CompletedAt = &now
		completed.LastUpdated = now
		if err := tx.Save(&completed).Error; err != nil {
			return fmt.Errorf("failed to complete queue head: %w", err)
		}

		err = tx.Where("temple_id = ? AND status = ? AND position > ?",
			templeID, StatusActive, completed.Position).
			Order("position ASC").
			Find(&advanced).Error
		if err != nil {
			return fmt.Errorf("failed to load active entries: %w", err)
		}

		for i := range advanced {
			advanced[i].Position--
			advanced[i].EstimatedWaitMinutes = WaitForPosition(advanced[i].Position, minutesPerVisitor)
			advanced[i].LastUpdated = now
			if err := tx.Save(&advanced[i]).Error; err != nil {
				return fmt.Errorf("failed to advance queue entry: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	r.publish(ctx, realtime.ChangeUpdate, &completed, nil)
	for i := range advanced {
		r.publish(ctx, realtime.ChangeUpdate, &advanced[i], nil)
	}

	return &completed, advanced, nil
}

// Cancel marks the entry cancelled and closes the gap behind it
func (r *repository) Cancel(ctx context.Context, entry *QueueEntry, minutesPerVisitor int) ([]QueueEntry, error) {
	var shifted []QueueEntry
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry.Status = StatusCancelled
		entry.LastUpdated = now
		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("failed to cancel queue entry: %w", err)
		}

		err := tx.Where("temple_id = ? AND status = ? AND position > ?",
			entry.TempleID, StatusActive, entry.Position).
			Order("position ASC").
			Find(&shifted).Error
		if err != nil {
			return fmt.Errorf("failed to load active entries: %w", err)
		}

		for i := range shifted {
			shifted[i].Position--
			shifted[i].EstimatedWaitMinutes = WaitForPosition(shifted[i].Position, minutesPerVisitor)
			shifted[i].LastUpdated = now
			if err := tx.Save(&shifted[i]).Error; err != nil {
				return fmt.Errorf("failed to shift queue entry: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.publish(ctx, realtime.ChangeUpdate, entry, nil)
	for i := range shifted {
		r.publish(ctx, realtime.ChangeUpdate, &shifted[i], nil)
	}

	return shifted, nil
}

// publish echoes a committed mutation onto the change feed. Feed errors are
// logged and swallowed; the write itself has already committed.
func (r *repository) publish(ctx context.Context, changeType realtime.ChangeType, entry, old *QueueEntry) {
	event := realtime.ChangeEvent{
		Type:      changeType,
		Timestamp: time.Now().UTC(),
	}

	if entry != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			r.logger.ErrorWithContext(ctx, "Failed to marshal change event row", err, nil)
			return
		}
		event.New = data
	}
	if old != nil {
		data, err := json.Marshal(old)
		if err == nil {
			event.Old = data
		}
	}

	if err := r.feed.Publish(ctx, QueueEntry{}.TableName(), entry.TempleID, event); err != nil {
		r.logger.ErrorWithContext(ctx, "Failed to publish change event", err,
			map[string]interface{}{"table": QueueEntry{}.TableName()})
	}
}
