package crowd

import (
	"context"
	"fmt"
	"time"

	"darshan/internal/notifications"
	"darshan/internal/shared/apperrors"
	"darshan/internal/shared/validation"
	"darshan/pkg/cache"
	"darshan/pkg/logger"
)

const (
	maxPredictionDays = 7
	historyWindow     = 7 * 24 * time.Hour
)

// Service ingests crowd readings and serves current levels, history and
// forecasts.
type Service interface {
	RecordReading(ctx context.Context, templeID string, req RecordReadingRequest) (*CrowdReading, error)
	GetCurrent(ctx context.Context, templeID string) (*CurrentCrowdResponse, error)
	GetHistory(ctx context.Context, templeID string, hours, limit int) ([]CrowdReading, error)
	GetPredictions(ctx context.Context, templeID string, daysAhead int) (*PredictionsResponse, error)
}

type service struct {
	repo       Repository
	cache      cache.Service
	dispatcher notifications.Dispatcher
	logger     *logger.Logger
	cacheTTL   time.Duration
}

func NewService(repo Repository, cacheService cache.Service, dispatcher notifications.Dispatcher, log *logger.Logger, cacheTTL time.Duration) Service {
	return &service{
		repo:       repo,
		cache:      cacheService,
		dispatcher: dispatcher,
		logger:     log,
		cacheTTL:   cacheTTL,
	}
}

func (s *service) RecordReading(ctx context.Context, templeID string, req RecordReadingRequest) (*CrowdReading, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = SourceStaff
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	capacity := CapacityFor(templeID)
	percentage := float64(req.Count) / float64(capacity) * 100
	if percentage > 100 {
		percentage = 100
	}

	reading := &CrowdReading{
		TempleID:           templeID,
		Count:              req.Count,
		Level:              LevelForCount(req.Count, capacity),
		CapacityPercentage: &percentage,
		Source:             source,
		RecordedAt:         recordedAt,
	}

	if err := s.repo.Create(ctx, reading); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, currentCacheKey(templeID)); err != nil {
			s.logger.Warn("Failed to invalidate crowd cache", "temple_id", templeID, "error", err.Error())
		}
	}

	s.logger.LogCrowdReading(ctx, templeID, string(reading.Level), reading.Count)

	if reading.Level == LevelHigh {
		s.dispatcher.Dispatch(ctx, notifications.Notification{
			UserID:   "broadcast:" + templeID,
			Type:     notifications.TypeCrowdAlert,
			Title:    "Heavy Crowd Alert",
			Message:  fmt.Sprintf("Crowd at %s is at high levels, expect long waits", templeID),
			Priority: notifications.PriorityHigh,
			Data: map[string]interface{}{
				"temple_id": templeID,
				"count":     reading.Count,
				"level":     string(reading.Level),
			},
		})
	}

	return reading, nil
}

// GetCurrent returns the freshest reading. Current is null when the temple
// has never reported a reading; that is a valid response, not an error.
func (s *service) GetCurrent(ctx context.Context, templeID string) (*CurrentCrowdResponse, error) {
	build := func() (*CurrentCrowdResponse, error) {
		current, err := s.repo.GetCurrent(ctx, templeID)
		if err != nil {
			return nil, err
		}
		return &CurrentCrowdResponse{
			TempleID: templeID,
			Current:  current,
			AsOf:     time.Now().UTC(),
		}, nil
	}

	if s.cache == nil {
		return build()
	}

	var resp CurrentCrowdResponse
	err := s.cache.GetOrSet(ctx, currentCacheKey(templeID), &resp, s.cacheTTL, func() (interface{}, error) {
		return build()
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) GetHistory(ctx context.Context, templeID string, hours, limit int) ([]CrowdReading, error) {
	if hours <= 0 {
		hours = 24
	}
	if hours > 168 {
		hours = 168
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	return s.repo.GetHistory(ctx, templeID, since, limit)
}

func (s *service) GetPredictions(ctx context.Context, templeID string, daysAhead int) (*PredictionsResponse, error) {
	if daysAhead <= 0 {
		daysAhead = 3
	}
	if daysAhead > maxPredictionDays {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "days",
			Message: fmt.Sprintf("must be at most %d", maxPredictionDays),
		})
	}

	now := time.Now().UTC()
	avg, err := s.repo.AverageCount(ctx, templeID, now.Add(-historyWindow))
	if err != nil {
		return nil, err
	}

	// Anchor on the calendar day so repeated calls agree all day long
	from := now.Truncate(24 * time.Hour)

	return &PredictionsResponse{
		TempleID:    templeID,
		Predictions: Predict(templeID, avg, from, daysAhead),
		GeneratedAt: now,
	}, nil
}

func currentCacheKey(templeID string) string {
	return fmt.Sprintf("crowd:current:%s", templeID)
}
