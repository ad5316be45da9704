package parking

import (
	"context"
	"time"

	"darshan/internal/shared/apperrors"
	"darshan/internal/shared/validation"
	"darshan/pkg/logger"

	"github.com/google/uuid"
)

// Service manages parking zones and their live availability
type Service interface {
	CreateZone(ctx context.Context, req CreateZoneRequest) (*ParkingZone, error)
	ListZones(ctx context.Context, templeID string) ([]ParkingZone, error)
	RecordArrival(ctx context.Context, zoneID string) (*ParkingZone, error)
	RecordDeparture(ctx context.Context, zoneID string) (*ParkingZone, error)
}

type service struct {
	repo   Repository
	logger *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{repo: repo, logger: log}
}

func (s *service) CreateZone(ctx context.Context, req CreateZoneRequest) (*ParkingZone, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	zone := &ParkingZone{
		TempleID:       req.TempleID,
		Name:           req.Name,
		TotalSpots:     req.TotalSpots,
		AvailableSpots: req.TotalSpots,
		LastUpdated:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, zone); err != nil {
		return nil, err
	}
	return zone, nil
}

func (s *service) ListZones(ctx context.Context, templeID string) ([]ParkingZone, error) {
	return s.repo.ListByTemple(ctx, templeID)
}

func (s *service) RecordArrival(ctx context.Context, zoneID string) (*ParkingZone, error) {
	return s.adjust(ctx, zoneID, -1)
}

func (s *service) RecordDeparture(ctx context.Context, zoneID string) (*ParkingZone, error) {
	return s.adjust(ctx, zoneID, +1)
}

func (s *service) adjust(ctx context.Context, zoneID string, delta int) (*ParkingZone, error) {
	id, err := uuid.Parse(zoneID)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "zone_id", Message: "must be a valid UUID",
		})
	}
	return s.repo.AdjustAvailability(ctx, id, delta)
}
