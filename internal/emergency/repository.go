package emergency

import (
	"context"
	"errors"
	"fmt"

	"darshan/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, incident *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	ListOpen(ctx context.Context, templeID string) ([]Incident, error)
	Update(ctx context.Context, incident *Incident) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, incident *Incident) error {
	if err := r.db.WithContext(ctx).Create(incident).Error; err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	var incident Incident
	err := r.db.WithContext(ctx).First(&incident, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("incident")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return &incident, nil
}

func (r *repository) ListOpen(ctx context.Context, templeID string) ([]Incident, error) {
	query := r.db.WithContext(ctx).Where("status <> ?", StatusResolved)
	if templeID != "" {
		query = query.Where("temple_id = ?", templeID)
	}

	var incidents []Incident
	if err := query.Order("reported_at DESC").Find(&incidents).Error; err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

func (r *repository) Update(ctx context.Context, incident *Incident) error {
	if err := r.db.WithContext(ctx).Save(incident).Error; err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}
	return nil
}
