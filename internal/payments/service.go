package payments

import (
	"context"
	"fmt"
	"time"

	"darshan/internal/bookings"
	"darshan/internal/shared/apperrors"
	"darshan/internal/shared/config"
	"darshan/internal/shared/validation"
	"darshan/pkg/logger"

	"github.com/google/uuid"
)

// Service runs the UPI collection flow: create an intent for a pending
// booking, report status, and settle via the provider webhook. A
// successful settlement is the only thing that confirms a booking.
type Service interface {
	CreatePayment(ctx context.Context, userID string, req CreatePaymentRequest) (*PaymentTransaction, error)
	GetStatus(ctx context.Context, reference, requesterID string, isStaff bool) (*PaymentTransaction, error)
	HandleWebhook(ctx context.Context, req WebhookRequest) (*PaymentTransaction, error)
}

type service struct {
	repo     Repository
	bookings bookings.Service
	logger   *logger.Logger
	upi      config.UPIConfig
}

func NewService(repo Repository, bookingService bookings.Service, log *logger.Logger, upi config.UPIConfig) Service {
	return &service{
		repo:     repo,
		bookings: bookingService,
		logger:   log,
		upi:      upi,
	}
}

func (s *service) CreatePayment(ctx context.Context, userID string, req CreatePaymentRequest) (*PaymentTransaction, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	booking, err := s.bookings.GetBooking(ctx, req.BookingID, userID, false)
	if err != nil {
		return nil, err
	}
	if booking.Status != bookings.StatusPending {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "booking_id",
			Message: fmt.Sprintf("booking with status %s cannot be paid for", booking.Status),
		})
	}

	now := time.Now().UTC()
	reference := NewReference(now)
	txn := &PaymentTransaction{
		BookingID: booking.ID,
		UserID:    uid,
		Amount:    req.Amount,
		Reference: reference,
		Status:    StatusPending,
		IntentURI: BuildIntentURI(s.upi.PayeeVPA, s.upi.PayeeName, req.Amount, booking.ID, reference),
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.logger.Info("Payment intent created",
		"reference", reference, "booking_id", booking.ID.String(), "amount", req.Amount)

	return txn, nil
}

func (s *service) GetStatus(ctx context.Context, reference, requesterID string, isStaff bool) (*PaymentTransaction, error) {
	txn, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !isStaff && txn.UserID.String() != requesterID {
		return nil, apperrors.ErrForbidden
	}
	return txn, nil
}

// HandleWebhook settles a pending transaction. Replayed webhooks are
// acknowledged without re-settling. A successful settlement confirms the
// booking, which admits it to the queue.
func (s *service) HandleWebhook(ctx context.Context, req WebhookRequest) (*PaymentTransaction, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	settled, err := s.repo.Settle(ctx, req.Reference, req.Status)
	if err != nil {
		return nil, err
	}

	txn, err := s.repo.GetByReference(ctx, req.Reference)
	if err != nil {
		return nil, err
	}

	if !settled {
		s.logger.Debug("Webhook replay ignored", "reference", req.Reference)
		return txn, nil
	}

	s.logger.Info("Payment settled",
		"reference", req.Reference, "status", string(req.Status))

	if req.Status == StatusSuccess {
		if err := s.bookings.ConfirmFromPayment(ctx, txn.BookingID); err != nil {
			// The payment settled; confirmation is retried out of band
			s.logger.ErrorWithContext(ctx, "Failed to confirm booking after payment", err,
				map[string]interface{}{"reference": req.Reference, "booking_id": txn.BookingID.String()})
		}
	}

	return txn, nil
}
