package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"darshan/internal/notifications"
	"darshan/internal/queue"
	"darshan/internal/shared/apperrors"
	"darshan/internal/shared/validation"
	"darshan/pkg/logger"

	"github.com/google/uuid"
)

// Service manages darshan bookings. Bookings start pending; payment
// success confirms them, and confirmation is the only path into the
// virtual queue.
type Service interface {
	CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, bookingID, requesterID string, isStaff bool) (*Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]Booking, error)
	CancelBooking(ctx context.Context, bookingID, requesterID string, isStaff bool) (*Booking, error)
	CompleteBooking(ctx context.Context, bookingID string) (*Booking, error)
	ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID) error
}

type service struct {
	repo       Repository
	queue      queue.Service
	dispatcher notifications.Dispatcher
	logger     *logger.Logger
}

func NewService(repo Repository, queueService queue.Service, dispatcher notifications.Dispatcher, log *logger.Logger) Service {
	return &service{
		repo:       repo,
		queue:      queueService,
		dispatcher: dispatcher,
		logger:     log,
	}
}

func (s *service) CreateBooking(ctx context.Context, userID string, req CreateBookingRequest) (*Booking, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	visitDate, err := time.ParseInLocation("2006-01-02", req.VisitDate, time.UTC)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "visit_date", Message: "must be a date in YYYY-MM-DD format",
		})
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if visitDate.Before(today) {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "visit_date", Message: "must not be in the past",
		})
	}

	booking := &Booking{
		UserID:    uid,
		TempleID:  req.TempleID,
		VisitDate: visitDate,
		Slot:      req.Slot,
		PartySize: req.PartySize,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   userID,
		Type:     notifications.TypeBooking,
		Title:    "Booking Created",
		Message:  fmt.Sprintf("Your darshan booking at %s is reserved, complete the payment to confirm", req.TempleID),
		Priority: notifications.PriorityMedium,
		Data: map[string]interface{}{
			"booking_id": booking.ID.String(),
			"temple_id":  req.TempleID,
			"status":     string(StatusPending),
		},
	})

	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, requesterID string, isStaff bool) (*Booking, error) {
	booking, err := s.lookup(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isStaff && booking.UserID.String() != requesterID {
		return nil, apperrors.ErrForbidden
	}
	return booking, nil
}

func (s *service) ListUserBookings(ctx context.Context, userID string) ([]Booking, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, uid)
}

// CancelBooking cancels a pending or confirmed booking. A confirmed
// booking's queue entry is released as well.
func (s *service) CancelBooking(ctx context.Context, bookingID, requesterID string, isStaff bool) (*Booking, error) {
	booking, err := s.lookup(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isStaff && booking.UserID.String() != requesterID {
		return nil, apperrors.ErrForbidden
	}

	if !booking.Status.CanTransitionTo(StatusCancelled) {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("booking with status %s cannot be cancelled", booking.Status),
		})
	}

	wasConfirmed := booking.Status == StatusConfirmed
	if err := s.repo.UpdateStatus(ctx, booking, StatusCancelled); err != nil {
		return nil, err
	}

	if wasConfirmed {
		err := s.queue.CancelEntry(ctx, booking.ID.String(), booking.UserID.String(), true)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.ErrorWithContext(ctx, "Failed to release queue entry for cancelled booking", err,
				map[string]interface{}{"booking_id": booking.ID.String()})
		}
	}

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   booking.UserID.String(),
		Type:     notifications.TypeBooking,
		Title:    "Booking Cancelled",
		Message:  fmt.Sprintf("Your darshan booking at %s has been cancelled", booking.TempleID),
		Priority: notifications.PriorityMedium,
		Data: map[string]interface{}{
			"booking_id": booking.ID.String(),
			"temple_id":  booking.TempleID,
		},
	})

	return booking, nil
}

// CompleteBooking marks a confirmed booking as completed after darshan
func (s *service) CompleteBooking(ctx context.Context, bookingID string) (*Booking, error) {
	booking, err := s.lookup(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransitionTo(StatusCompleted) {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("booking with status %s cannot be completed", booking.Status),
		})
	}

	if err := s.repo.UpdateStatus(ctx, booking, StatusCompleted); err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmFromPayment flips a pending booking to confirmed after a
// successful payment and admits it to the temple's queue.
func (s *service) ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.Status == StatusConfirmed {
		return nil
	}
	if !booking.Status.CanTransitionTo(StatusConfirmed) {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("booking with status %s cannot be confirmed", booking.Status),
		})
	}

	if err := s.repo.UpdateStatus(ctx, booking, StatusConfirmed); err != nil {
		return err
	}

	if _, err := s.queue.JoinQueue(ctx, queue.JoinQueueRequest{
		BookingID: booking.ID.String(),
		UserID:    booking.UserID.String(),
		TempleID:  booking.TempleID,
	}); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   booking.UserID.String(),
		Type:     notifications.TypeBooking,
		Title:    "Booking Confirmed",
		Message:  fmt.Sprintf("Payment received, your darshan at %s is confirmed", booking.TempleID),
		Priority: notifications.PriorityHigh,
		Data: map[string]interface{}{
			"booking_id": booking.ID.String(),
			"temple_id":  booking.TempleID,
		},
	})

	return nil
}

func (s *service) lookup(ctx context.Context, bookingID string) (*Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "booking_id", Message: "must be a valid UUID",
		})
	}
	return s.repo.GetByID(ctx, id)
}
