package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"darshan/internal/notifications"
	"darshan/internal/shared/apperrors"
	"darshan/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	entries map[string]*QueueEntry // keyed by booking id
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[string]*QueueEntry)}
}

func (r *fakeRepo) Create(ctx context.Context, entry *QueueEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	stored := *entry
	r.entries[entry.BookingID.String()] = &stored
	return nil
}

func (r *fakeRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*QueueEntry, error) {
	entry, ok := r.entries[bookingID.String()]
	if !ok {
		return nil, apperrors.NotFound("queue entry")
	}
	copied := *entry
	return &copied, nil
}

func (r *fakeRepo) ListActive(ctx context.Context, templeID string) ([]QueueEntry, error) {
	var out []QueueEntry
	for _, e := range r.entries {
		if e.TempleID == templeID && e.Status == StatusActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAllActive(ctx context.Context) ([]QueueEntry, error) {
	var out []QueueEntry
	for _, e := range r.entries {
		if e.Status == StatusActive {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountActive(ctx context.Context, templeID string) (int64, error) {
	var count int64
	for _, e := range r.entries {
		if e.TempleID == templeID && e.Status == StatusActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) UpdateGated(ctx context.Context, old, updated *QueueEntry) (bool, error) {
	current, ok := r.entries[updated.BookingID.String()]
	if !ok {
		return false, nil
	}
	if current.LastUpdated.After(updated.LastUpdated) {
		return false, nil
	}
	stored := *updated
	r.entries[updated.BookingID.String()] = &stored
	return true, nil
}

func (r *fakeRepo) Advance(ctx context.Context, templeID string, minutesPerVisitor int) (*QueueEntry, []QueueEntry, error) {
	var head *QueueEntry
	for _, e := range r.entries {
		if e.TempleID == templeID && e.Status == StatusActive {
			if head == nil || e.Position < head.Position {
				head = e
			}
		}
	}
	if head == nil {
		return nil, nil, apperrors.NotFound("queue entry")
	}

	now := time.Now().UTC()
	head.Status = StatusCompleted
	head.CompletedAt = &now
	head.LastUpdated = now

	var advanced []QueueEntry
	for _, e := range r.entries {
		if e.TempleID == templeID && e.Status == StatusActive && e.Position > head.Position {
			e.Position--
			e.EstimatedWaitMinutes = WaitForPosition(e.Position, minutesPerVisitor)
			e.LastUpdated = now
			advanced = append(advanced, *e)
		}
	}

	copied := *head
	return &copied, advanced, nil
}

func (r *fakeRepo) Cancel(ctx context.Context, entry *QueueEntry, minutesPerVisitor int) ([]QueueEntry, error) {
	stored, ok := r.entries[entry.BookingID.String()]
	if !ok {
		return nil, apperrors.NotFound("queue entry")
	}
	now := time.Now().UTC()
	stored.Status = StatusCancelled
	stored.LastUpdated = now

	var shifted []QueueEntry
	for _, e := range r.entries {
		if e.TempleID == stored.TempleID && e.Status == StatusActive && e.Position > stored.Position {
			e.Position--
			e.EstimatedWaitMinutes = WaitForPosition(e.Position, minutesPerVisitor)
			e.LastUpdated = now
			shifted = append(shifted, *e)
		}
	}
	return shifted, nil
}

type captureDispatcher struct {
	sent []notifications.Notification
}

func (d *captureDispatcher) Dispatch(ctx context.Context, n notifications.Notification) {
	d.sent = append(d.sent, n)
}

func (d *captureDispatcher) Close() error { return nil }

func newTestService(repo Repository) (Service, *captureDispatcher) {
	dispatcher := &captureDispatcher{}
	svc := NewService(repo, nil, dispatcher, logger.New(), 3)
	return svc, dispatcher
}

func joinReq(templeID string) JoinQueueRequest {
	return JoinQueueRequest{
		BookingID: uuid.NewString(),
		UserID:    uuid.NewString(),
		TempleID:  templeID,
	}
}

func TestWaitForPosition(t *testing.T) {
	assert.Equal(t, 0, WaitForPosition(1, 3))
	assert.Equal(t, 3, WaitForPosition(2, 3))
	assert.Equal(t, 12, WaitForPosition(5, 3))
	assert.Equal(t, 0, WaitForPosition(0, 3))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusActive.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusActive.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
}

func TestJoinQueueAssignsPositionAndWait(t *testing.T) {
	repo := newFakeRepo()
	svc, dispatcher := newTestService(repo)
	ctx := context.Background()

	first, err := svc.JoinQueue(ctx, joinReq("somnath"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 0, first.EstimatedWaitMinutes)

	second, err := svc.JoinQueue(ctx, joinReq("somnath"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)
	assert.Equal(t, 3, second.EstimatedWaitMinutes)

	assert.Len(t, dispatcher.sent, 2)
	assert.Equal(t, notifications.TypeQueueUpdate, dispatcher.sent[0].Type)
}

func TestJoinQueueIdempotentPerBooking(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	req := joinReq("dwarka")
	first, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)

	again, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Position, again.Position)

	count, _ := repo.CountActive(ctx, "dwarka")
	assert.Equal(t, int64(1), count)
}

func TestGetQueueStatusOwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	req := joinReq("ambaji")
	_, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)

	status, err := svc.GetQueueStatus(ctx, req.BookingID, req.UserID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Position)
	assert.Equal(t, 0, status.AheadInQueue)

	_, err = svc.GetQueueStatus(ctx, req.BookingID, uuid.NewString(), false)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	// Staff may read any entry
	_, err = svc.GetQueueStatus(ctx, req.BookingID, uuid.NewString(), true)
	assert.NoError(t, err)
}

func TestCheckInAdvancesQueue(t *testing.T) {
	repo := newFakeRepo()
	svc, dispatcher := newTestService(repo)
	ctx := context.Background()

	first := joinReq("somnath")
	second := joinReq("somnath")
	third := joinReq("somnath")
	for _, req := range []JoinQueueRequest{first, second, third} {
		_, err := svc.JoinQueue(ctx, req)
		require.NoError(t, err)
	}
	dispatcher.sent = nil

	completed, err := svc.CheckIn(ctx, "somnath")
	require.NoError(t, err)
	assert.Equal(t, first.BookingID, completed.BookingID.String())
	assert.Equal(t, StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	status, err := svc.GetQueueStatus(ctx, second.BookingID, second.UserID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Position)
	assert.Equal(t, 0, status.EstimatedWaitMinutes)

	status, err = svc.GetQueueStatus(ctx, third.BookingID, third.UserID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Position)
	assert.Equal(t, 3, status.EstimatedWaitMinutes)

	// One notification for the completed pilgrim, one per advanced entry
	assert.Len(t, dispatcher.sent, 3)
	assert.Equal(t, notifications.PriorityHigh, dispatcher.sent[0].Priority)
}

func TestCheckInEmptyQueue(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	_, err := svc.CheckIn(context.Background(), "pavagadh")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCancelEntryShiftsFollowers(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	first := joinReq("dwarka")
	second := joinReq("dwarka")
	for _, req := range []JoinQueueRequest{first, second} {
		_, err := svc.JoinQueue(ctx, req)
		require.NoError(t, err)
	}

	require.NoError(t, svc.CancelEntry(ctx, first.BookingID, first.UserID, false))

	status, err := svc.GetQueueStatus(ctx, second.BookingID, second.UserID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Position)
}

func TestCancelTerminalEntryRejected(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	req := joinReq("somnath")
	_, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, "somnath")
	require.NoError(t, err)

	err = svc.CancelEntry(ctx, req.BookingID, req.UserID, false)
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCancelEntryForbiddenForOthers(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	req := joinReq("ambaji")
	_, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)

	err = svc.CancelEntry(ctx, req.BookingID, uuid.NewString(), false)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestApplyPatchStaleDiscardedSilently(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	req := joinReq("somnath")
	created, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)

	stale := created.LastUpdated.Add(-time.Minute)
	wait := 99
	entry, applied, err := svc.ApplyPatch(ctx, req.BookingID, PatchRequest{
		EstimatedWaitMinutes: &wait,
		LastUpdated:          stale,
	})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NotEqual(t, 99, entry.EstimatedWaitMinutes)
}

func TestApplyPatchNewerWins(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	req := joinReq("somnath")
	created, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)

	wait := 42
	entry, applied, err := svc.ApplyPatch(ctx, req.BookingID, PatchRequest{
		EstimatedWaitMinutes: &wait,
		LastUpdated:          created.LastUpdated.Add(time.Second),
	})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 42, entry.EstimatedWaitMinutes)
}

func TestApplyPatchTerminalTransitionRejected(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	req := joinReq("somnath")
	_, err := svc.JoinQueue(ctx, req)
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, "somnath")
	require.NoError(t, err)

	cancelled := StatusCancelled
	_, _, err = svc.ApplyPatch(ctx, req.BookingID, PatchRequest{
		Status:      &cancelled,
		LastUpdated: time.Now().UTC().Add(time.Hour),
	})
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestGetTempleOverviewFromStore(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	_, err := svc.JoinQueue(ctx, joinReq("pavagadh"))
	require.NoError(t, err)
	_, err = svc.JoinQueue(ctx, joinReq("pavagadh"))
	require.NoError(t, err)

	overview, err := svc.GetTempleOverview(ctx, "pavagadh")
	require.NoError(t, err)
	assert.Equal(t, 2, overview.TotalInQueue)
	// Waits are [0, 3], so the mean rounds to 2
	assert.Equal(t, 2, overview.AverageWaitMinutes)
	require.Len(t, overview.Entries, 2)
	assert.Equal(t, 1, overview.Entries[0].Position)
	assert.Equal(t, 2, overview.Entries[1].Position)
	assert.False(t, overview.Live)
	assert.NotNil(t, overview.NowServingBooking)
}

func TestGetTempleOverviewAveragesWaits(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	reqs := []JoinQueueRequest{joinReq("somnath"), joinReq("somnath"), joinReq("somnath")}
	for _, req := range reqs {
		_, err := svc.JoinQueue(ctx, req)
		require.NoError(t, err)
	}

	// Staff reconciliation sets uneven waits
	for i, wait := range []int{10, 20, 15} {
		w := wait
		_, applied, err := svc.ApplyPatch(ctx, reqs[i].BookingID, PatchRequest{
			EstimatedWaitMinutes: &w,
			LastUpdated:          time.Now().UTC().Add(time.Minute),
		})
		require.NoError(t, err)
		require.True(t, applied)
	}

	overview, err := svc.GetTempleOverview(ctx, "somnath")
	require.NoError(t, err)
	assert.Equal(t, 3, overview.TotalInQueue)
	assert.Equal(t, 15, overview.AverageWaitMinutes)
	require.Len(t, overview.Entries, 3)
	for i := 1; i < len(overview.Entries); i++ {
		assert.Less(t, overview.Entries[i-1].Position, overview.Entries[i].Position)
	}
}

func TestGetTempleOverviewEmptyQueue(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	overview, err := svc.GetTempleOverview(context.Background(), "ambaji")
	require.NoError(t, err)
	assert.Equal(t, 0, overview.TotalInQueue)
	assert.Equal(t, 0, overview.AverageWaitMinutes)
	assert.Empty(t, overview.Entries)
	assert.Nil(t, overview.NowServingBooking)
}
