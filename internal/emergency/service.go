package emergency

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

// Service handles emergency incident reporting and response
type Service interface {
	ReportIncident(ctx context.Context, reporterID string, req ReportIncidentRequest) (*Incident, error)
	ListOpen(ctx context.Context, templeID string) ([]Incident, error)
	AcknowledgeIncident(ctx context.Context, incidentID, responderID string) (*Incident, error)
	ResolveIncident(ctx context.Context, incidentID, responderID string) (*Incident, error)
}

type service struct {
	repo       Repository
	dispatcher notifications.Dispatcher
	logger     *logger.Logger
}

func NewService(repo Repository, dispatcher notifications.Dispatcher, log *logger.Logger) Service {
	return &service{repo: repo, dispatcher: dispatcher, logger: log}
}

func (s *service) ReportIncident(ctx context.Context, reporterID string, req ReportIncidentRequest) (*Incident, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	reporter, err := uuid.Parse(reporterID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	incident := &Incident{
		ReportedBy:  reporter,
		TempleID:    req.TempleID,
		Type:        req.Type,
		Description: req.Description,
		Location:    req.Location,
		Status:      StatusReported,
		ReportedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return nil, err
	}

	s.logger.Warn("Emergency incident reported",
		"incident_id", incident.ID.String(),
		"temple_id", req.TempleID,
		"type", string(req.Type))

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   "responders:" + req.TempleID,
		Type:     notifications.TypeEmergency,
		Title:    fmt.Sprintf("Emergency: %s at %s", req.Type, req.TempleID),
		Message:  req.Description,
		Priority: notifications.PriorityHigh,
		Data: map[string]interface{}{
			"incident_id": incident.ID.String(),
			"temple_id":   req.TempleID,
			"type":        string(req.Type),
			"location":    req.Location,
		},
	})

	return incident, nil
}

func (s *service) ListOpen(ctx context.Context, templeID string) ([]Incident, error) {
	return s.repo.ListOpen(ctx, templeID)
}

func (s *service) AcknowledgeIncident(ctx context.Context, incidentID, responderID string) (*Incident, error) {
	incident, err := s.lookup(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	if incident.Status != StatusReported {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("incident with status %s cannot be acknowledged", incident.Status),
		})
	}

	incident.Status = StatusAcknowledged
	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

func (s *service) ResolveIncident(ctx context.Context, incidentID, responderID string) (*Incident, error) {
	incident, err := s.lookup(ctx, incidentID)
	if err != nil {
		return nil, err
	}

	responder, err := uuid.Parse(responderID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	if incident.Status == StatusResolved {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "status", Message: "incident is already resolved",
		})
	}

	now := time.Now().UTC()
	incident.Status = StatusResolved
	incident.ResolvedAt = &now
	incident.ResolvedBy = &responder
	if err := s.repo.Update(ctx, incident); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   incident.ReportedBy.String(),
		Type:     notifications.TypeEmergency,
		Title:    "Incident Resolved",
		Message:  fmt.Sprintf("Your %s report at %s has been resolved", incident.Type, incident.TempleID),
		Priority: notifications.PriorityMedium,
		Data: map[string]interface{}{
			"incident_id": incident.ID.String(),
			"temple_id":   incident.TempleID,
		},
	})

	return incident, nil
}

func (s *service) lookup(ctx context.Context, incidentID string) (*Incident, error) {
	id, err := uuid.Parse(incidentID)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "incident_id", Message: "must be a valid UUID",
		})
	}
	return s.repo.GetByID(ctx, id)
}
