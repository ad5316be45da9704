package traffic

import (
	"context"
	"fmt"
	"time"

	"darshan/internal/notifications"
	"darshan/internal/shared/apperrors"
	"darshan/internal/shared/validation"
	"darshan/pkg/logger"

	"github.com/google/uuid"
)

// Service manages traffic advisories around temples
type Service interface {
	CreateAdvisory(ctx context.Context, createdBy string, req CreateAdvisoryRequest) (*Advisory, error)
	ListActive(ctx context.Context, templeID string) ([]Advisory, error)
	ExpireAdvisory(ctx context.Context, advisoryID string) error
}

type service struct {
	repo       Repository
	dispatcher notifications.Dispatcher
	logger     *logger.Logger
}

func NewService(repo Repository, dispatcher notifications.Dispatcher, log *logger.Logger) Service {
	return &service{repo: repo, dispatcher: dispatcher, logger: log}
}

func (s *service) CreateAdvisory(ctx context.Context, createdBy string, req CreateAdvisoryRequest) (*Advisory, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	creator, err := uuid.Parse(createdBy)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	now := time.Now().UTC()
	advisory := &Advisory{
		TempleID:    req.TempleID,
		Title:       req.Title,
		Message:     req.Message,
		Severity:    req.Severity,
		Route:       req.Route,
		ActiveUntil: now.Add(time.Duration(req.ActiveHours) * time.Hour),
		CreatedBy:   creator,
	}
	if err := s.repo.Create(ctx, advisory); err != nil {
		return nil, err
	}

	priority := notifications.PriorityLow
	if req.Severity == SeveritySevere {
		priority = notifications.PriorityHigh
	} else if req.Severity == SeverityModerate {
		priority = notifications.PriorityMedium
	}

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   "broadcast:" + req.TempleID,
		Type:     notifications.TypeTraffic,
		Title:    req.Title,
		Message:  req.Message,
		Priority: priority,
		Data: map[string]interface{}{
			"temple_id":   req.TempleID,
			"advisory_id": advisory.ID.String(),
			"severity":    string(req.Severity),
		},
	})

	return advisory, nil
}

func (s *service) ListActive(ctx context.Context, templeID string) ([]Advisory, error) {
	return s.repo.ListActive(ctx, templeID, time.Now().UTC())
}

func (s *service) ExpireAdvisory(ctx context.Context, advisoryID string) error {
	id, err := uuid.Parse(advisoryID)
	if err != nil {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field: "advisory_id", Message: "must be a valid UUID",
		})
	}

	advisory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if !advisory.IsActive(now) {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "advisory_id",
			Message: fmt.Sprintf("advisory %s is no longer active", advisoryID),
		})
	}

	return s.repo.Expire(ctx, advisory, now)
}
