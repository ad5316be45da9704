package queue

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"darshan/internal/notifications"
	"darshan/internal/shared/apperrors"
	"darshan/internal/shared/validation"
	"darshan/pkg/logger"

	"github.com/google/uuid"
)

// Service coordinates the virtual darshan queue: admission, status reads,
// staff check-in (the drain step) and cancellation.
type Service interface {
	JoinQueue(ctx context.Context, req JoinQueueRequest) (*QueueEntry, error)
	GetQueueStatus(ctx context.Context, bookingID, requesterID string, isStaff bool) (*QueueStatusResponse, error)
	GetTempleOverview(ctx context.Context, templeID string) (*TempleOverviewResponse, error)
	CheckIn(ctx context.Context, templeID string) (*QueueEntry, error)
	CancelEntry(ctx context.Context, bookingID, requesterID string, isStaff bool) error
	ApplyPatch(ctx context.Context, bookingID string, req PatchRequest) (*QueueEntry, bool, error)
}

// PatchRequest is a staff reconciliation patch. LastUpdated is the writer's
// timestamp; patches older than the stored row are discarded silently.
type PatchRequest struct {
	Position             *int      `json:"position" validate:"omitempty,gte=1"`
	Status               *Status   `json:"status" validate:"omitempty,oneof=active completed cancelled"`
	EstimatedWaitMinutes *int      `json:"estimated_wait_minutes" validate:"omitempty,gte=0"`
	LastUpdated          time.Time `json:"last_updated" validate:"required"`
}

type service struct {
	repo              Repository
	tracker           *Tracker
	dispatcher        notifications.Dispatcher
	logger            *logger.Logger
	minutesPerVisitor int
}

func NewService(repo Repository, tracker *Tracker, dispatcher notifications.Dispatcher, log *logger.Logger, minutesPerVisitor int) Service {
	return &service{
		repo:              repo,
		tracker:           tracker,
		dispatcher:        dispatcher,
		logger:            log,
		minutesPerVisitor: minutesPerVisitor,
	}
}

// JoinQueue admits a confirmed booking to the back of its temple's queue.
// Idempotent on booking: rejoining returns the existing entry.
func (s *service) JoinQueue(ctx context.Context, req JoinQueueRequest) (*QueueEntry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "booking_id", Message: "must be a valid UUID",
		})
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "user_id", Message: "must be a valid UUID",
		})
	}

	if existing, err := s.repo.GetByBookingID(ctx, bookingID); err == nil {
		return existing, nil
	}

	active, err := s.repo.CountActive(ctx, req.TempleID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	position := int(active) + 1
	entry := &QueueEntry{
		BookingID:            bookingID,
		UserID:               userID,
		TempleID:             req.TempleID,
		Position:             position,
		Status:               StatusActive,
		EstimatedWaitMinutes: WaitForPosition(position, s.minutesPerVisitor),
		JoinedAt:             now,
		LastUpdated:          now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   req.UserID,
		Type:     notifications.TypeQueueUpdate,
		Title:    "Joined Darshan Queue",
		Message:  fmt.Sprintf("You are number %d in the queue at %s", position, req.TempleID),
		Priority: notifications.PriorityMedium,
		Data: map[string]interface{}{
			"booking_id": req.BookingID,
			"temple_id":  req.TempleID,
			"position":   position,
		},
	})

	return entry, nil
}

// GetQueueStatus returns the live view of one booking's place in the queue.
// Pilgrims may only read their own entry; staff may read any.
func (s *service) GetQueueStatus(ctx context.Context, bookingID, requesterID string, isStaff bool) (*QueueStatusResponse, error) {
	entry, err := s.lookupEntry(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !isStaff && entry.UserID.String() != requesterID {
		return nil, apperrors.ErrForbidden
	}

	ahead := 0
	if entry.Status == StatusActive && entry.Position > 1 {
		ahead = entry.Position - 1
	}

	return &QueueStatusResponse{
		BookingID:            entry.BookingID.String(),
		TempleID:             entry.TempleID,
		Position:             entry.Position,
		Status:               entry.Status,
		EstimatedWaitMinutes: entry.EstimatedWaitMinutes,
		AheadInQueue:         ahead,
		JoinedAt:             entry.JoinedAt,
		CompletedAt:          entry.CompletedAt,
		LastUpdated:          entry.LastUpdated,
	}, nil
}

// lookupEntry prefers the live tracker and falls back to the store
func (s *service) lookupEntry(ctx context.Context, bookingID string) (*QueueEntry, error) {
	if s.tracker != nil && s.tracker.Live() {
		if entry, ok := s.tracker.EntryByBooking(bookingID); ok {
			return &entry, nil
		}
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperrors.NewValidationError(apperrors.FieldError{
			Field: "booking_id", Message: "must be a valid UUID",
		})
	}
	return s.repo.GetByBookingID(ctx, id)
}

// GetTempleOverview summarises a temple's queue for display boards. Served
// from the live tracker when the feed is up, the store otherwise.
func (s *service) GetTempleOverview(ctx context.Context, templeID string) (*TempleOverviewResponse, error) {
	var entries []QueueEntry
	live := s.tracker != nil && s.tracker.Live()

	if live {
		entries = s.tracker.ActiveForTemple(templeID)
	} else {
		var err error
		entries, err = s.repo.ListActive(ctx, templeID)
		if err != nil {
			return nil, err
		}
	}

	if entries == nil {
		entries = []QueueEntry{}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})

	average := 0
	if len(entries) > 0 {
		sum := 0
		for i := range entries {
			sum += entries[i].EstimatedWaitMinutes
		}
		average = int(math.Round(float64(sum) / float64(len(entries))))
	}

	overview := &TempleOverviewResponse{
		TempleID:           templeID,
		TotalInQueue:       len(entries),
		AverageWaitMinutes: average,
		Entries:            entries,
		Live:               live,
		AsOf:               time.Now().UTC(),
	}
	if len(entries) > 0 {
		head := entries[0].BookingID.String()
		overview.NowServingBooking = &head
	}

	return overview, nil
}

// CheckIn is the drain step: staff confirm the pilgrim at the head of the
// queue has entered darshan. The head entry completes and everyone behind
// moves up one position.
func (s *service) CheckIn(ctx context.Context, templeID string) (*QueueEntry, error) {
	completed, advanced, err := s.repo.Advance(ctx, templeID, s.minutesPerVisitor)
	if err != nil {
		return nil, err
	}

	s.logger.LogQueueAdvanced(ctx, templeID, completed.BookingID.String(), len(advanced))

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   completed.UserID.String(),
		Type:     notifications.TypeQueueUpdate,
		Title:    "Darshan Time",
		Message:  "Please proceed to the darshan area",
		Priority: notifications.PriorityHigh,
		Data: map[string]interface{}{
			"booking_id": completed.BookingID.String(),
			"temple_id":  templeID,
		},
	})

	for i := range advanced {
		s.dispatcher.Dispatch(ctx, notifications.Notification{
			UserID:   advanced[i].UserID.String(),
			Type:     notifications.TypeQueueUpdate,
			Title:    "Queue Update",
			Message:  fmt.Sprintf("You are now number %d in the queue", advanced[i].Position),
			Priority: notifications.PriorityLow,
			Data: map[string]interface{}{
				"booking_id":             advanced[i].BookingID.String(),
				"temple_id":              templeID,
				"position":               advanced[i].Position,
				"estimated_wait_minutes": advanced[i].EstimatedWaitMinutes,
			},
		})
	}

	return completed, nil
}

// CancelEntry removes an active entry and closes the gap behind it.
// Terminal entries cannot be cancelled again.
func (s *service) CancelEntry(ctx context.Context, bookingID, requesterID string, isStaff bool) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field: "booking_id", Message: "must be a valid UUID",
		})
	}

	entry, err := s.repo.GetByBookingID(ctx, id)
	if err != nil {
		return err
	}

	if !isStaff && entry.UserID.String() != requesterID {
		return apperrors.ErrForbidden
	}

	if !entry.Status.CanTransitionTo(StatusCancelled) {
		return apperrors.NewValidationError(apperrors.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("entry with status %s cannot be cancelled", entry.Status),
		})
	}

	if _, err := s.repo.Cancel(ctx, entry, s.minutesPerVisitor); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, notifications.Notification{
		UserID:   entry.UserID.String(),
		Type:     notifications.TypeQueueUpdate,
		Title:    "Queue Entry Cancelled",
		Message:  fmt.Sprintf("Your place in the queue at %s has been released", entry.TempleID),
		Priority: notifications.PriorityLow,
		Data: map[string]interface{}{
			"booking_id": bookingID,
			"temple_id":  entry.TempleID,
		},
	})

	return nil
}

// ApplyPatch applies a staff reconciliation patch through the merge gate.
// Returns the stored entry and whether the patch was applied; a stale
// patch is a silent no-op, not an error.
func (s *service) ApplyPatch(ctx context.Context, bookingID string, req PatchRequest) (*QueueEntry, bool, error) {
	if err := validation.Struct(req); err != nil {
		return nil, false, err
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, false, apperrors.NewValidationError(apperrors.FieldError{
			Field: "booking_id", Message: "must be a valid UUID",
		})
	}

	current, err := s.repo.GetByBookingID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if req.Status != nil && *req.Status != current.Status && !current.Status.CanTransitionTo(*req.Status) {
		return nil, false, apperrors.NewValidationError(apperrors.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current.Status, *req.Status),
		})
	}

	updated := *current
	if req.Position != nil {
		updated.Position = *req.Position
	}
	if req.Status != nil {
		updated.Status = *req.Status
		if updated.Status == StatusCompleted && updated.CompletedAt == nil {
			now := time.Now().UTC()
			updated.CompletedAt = &now
		}
	}
	if req.EstimatedWaitMinutes != nil {
		updated.EstimatedWaitMinutes = *req.EstimatedWaitMinutes
	}
	updated.LastUpdated = req.LastUpdated

	applied, err := s.repo.UpdateGated(ctx, current, &updated)
	if err != nil {
		return nil, false, err
	}
	if !applied {
		return current, false, nil
	}

	return &updated, true, nil
}
