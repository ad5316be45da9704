package payments

import (
	"context"
	"errors"
	"fmt"

	"darshan/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, txn *PaymentTransaction) error
	GetByReference(ctx context.Context, reference string) (*PaymentTransaction, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*PaymentTransaction, error)
	Settle(ctx context.Context, reference string, status Status) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, txn *PaymentTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}
	return nil
}

func (r *repository) GetByReference(ctx context.Context, reference string) (*PaymentTransaction, error) {
	var txn PaymentTransaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("payment transaction")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}
	return &txn, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*PaymentTransaction, error) {
	var txn PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("payment transaction")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}
	return &txn, nil
}

// Settle moves a pending transaction to its final status. The pending
// guard in the WHERE clause makes replayed webhooks a no-op: the first
// settlement wins and later ones report false.
func (r *repository) Settle(ctx context.Context, reference string, status Status) (bool, error) {
	result := r.db.WithContext(ctx).Model(&PaymentTransaction{}).
		Where("reference = ? AND status = ?", reference, StatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, fmt.Errorf("failed to settle payment transaction: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
