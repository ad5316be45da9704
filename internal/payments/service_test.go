package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"darshan/internal/bookings"
	"darshan/internal/shared/apperrors"
	"darshan/internal/shared/config"
	"darshan/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	byReference map[string]*PaymentTransaction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byReference: make(map[string]*PaymentTransaction)}
}

func (r *fakeRepo) Create(ctx context.Context, txn *PaymentTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	stored := *txn
	r.byReference[txn.Reference] = &stored
	return nil
}

func (r *fakeRepo) GetByReference(ctx context.Context, reference string) (*PaymentTransaction, error) {
	txn, ok := r.byReference[reference]
	if !ok {
		return nil, apperrors.NotFound("payment transaction")
	}
	copied := *txn
	return &copied, nil
}

func (r *fakeRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*PaymentTransaction, error) {
	for _, txn := range r.byReference {
		if txn.BookingID == bookingID {
			copied := *txn
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("payment transaction")
}

func (r *fakeRepo) Settle(ctx context.Context, reference string, status Status) (bool, error) {
	txn, ok := r.byReference[reference]
	if !ok || txn.Status != StatusPending {
		return false, nil
	}
	txn.Status = status
	return true, nil
}

type fakeBookings struct {
	booking    *bookings.Booking
	confirmed  []uuid.UUID
	confirmErr error
}

func (b *fakeBookings) CreateBooking(ctx context.Context, userID string, req bookings.CreateBookingRequest) (*bookings.Booking, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBookings) GetBooking(ctx context.Context, bookingID, requesterID string, isStaff bool) (*bookings.Booking, error) {
	if b.booking == nil || b.booking.ID.String() != bookingID {
		return nil, apperrors.NotFound("booking")
	}
	if b.booking.UserID.String() != requesterID && !isStaff {
		return nil, apperrors.ErrForbidden
	}
	return b.booking, nil
}

func (b *fakeBookings) ListUserBookings(ctx context.Context, userID string) ([]bookings.Booking, error) {
	return nil, nil
}

func (b *fakeBookings) CancelBooking(ctx context.Context, bookingID, requesterID string, isStaff bool) (*bookings.Booking, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBookings) CompleteBooking(ctx context.Context, bookingID string) (*bookings.Booking, error) {
	return nil, errors.New("not implemented")
}

func (b *fakeBookings) ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID) error {
	if b.confirmErr != nil {
		return b.confirmErr
	}
	b.confirmed = append(b.confirmed, bookingID)
	return nil
}

var testUPI = config.UPIConfig{PayeeVPA: "smartdarshan@upi", PayeeName: "Smart Darshan"}

func newTestService(booking *bookings.Booking) (Service, *fakeRepo, *fakeBookings) {
	repo := newFakeRepo()
	bk := &fakeBookings{booking: booking}
	svc := NewService(repo, bk, logger.New(), testUPI)
	return svc, repo, bk
}

func pendingBooking(userID uuid.UUID) *bookings.Booking {
	return &bookings.Booking{
		ID:       uuid.New(),
		UserID:   userID,
		TempleID: "somnath",
		Status:   bookings.StatusPending,
	}
}

func TestNewReference(t *testing.T) {
	now := time.UnixMilli(1767072000000).UTC()
	assert.Equal(t, "SD1767072000000", NewReference(now))
}

func TestBuildIntentURI(t *testing.T) {
	bookingID := uuid.MustParse("0d1f9f6e-9a74-4f57-9d3c-2f5a8e9b1c01")
	uri := BuildIntentURI("smartdarshan@upi", "Smart Darshan", 251.5, bookingID, "SD1767072000000")

	assert.True(t, strings.HasPrefix(uri, "upi://pay?"))
	assert.Contains(t, uri, "pa=smartdarshan%40upi")
	assert.Contains(t, uri, "pn=Smart%20Darshan")
	assert.Contains(t, uri, "am=251.50")
	assert.Contains(t, uri, "cu=INR")
	assert.Contains(t, uri, fmt.Sprintf("tn=Booking%%20%s", bookingID))
	assert.Contains(t, uri, "tr=SD1767072000000")
}

func TestCreatePaymentForPendingBooking(t *testing.T) {
	userID := uuid.New()
	booking := pendingBooking(userID)
	svc, _, _ := newTestService(booking)

	txn, err := svc.CreatePayment(context.Background(), userID.String(), CreatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    101,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, txn.Status)
	assert.True(t, strings.HasPrefix(txn.Reference, "SD"))
	assert.Contains(t, txn.IntentURI, "am=101.00")
}

func TestCreatePaymentForConfirmedBookingRejected(t *testing.T) {
	userID := uuid.New()
	booking := pendingBooking(userID)
	booking.Status = bookings.StatusConfirmed
	svc, _, _ := newTestService(booking)

	_, err := svc.CreatePayment(context.Background(), userID.String(), CreatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    101,
	})
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestCreatePaymentForeignBookingForbidden(t *testing.T) {
	booking := pendingBooking(uuid.New())
	svc, _, _ := newTestService(booking)

	_, err := svc.CreatePayment(context.Background(), uuid.NewString(), CreatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    101,
	})
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestWebhookSuccessConfirmsBooking(t *testing.T) {
	userID := uuid.New()
	booking := pendingBooking(userID)
	svc, _, bk := newTestService(booking)
	ctx := context.Background()

	txn, err := svc.CreatePayment(ctx, userID.String(), CreatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    101,
	})
	require.NoError(t, err)

	settled, err := svc.HandleWebhook(ctx, WebhookRequest{
		Reference: txn.Reference,
		Status:    StatusSuccess,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, settled.Status)

	require.Len(t, bk.confirmed, 1)
	assert.Equal(t, booking.ID, bk.confirmed[0])
}

func TestWebhookReplayIsNoOp(t *testing.T) {
	userID := uuid.New()
	booking := pendingBooking(userID)
	svc, _, bk := newTestService(booking)
	ctx := context.Background()

	txn, err := svc.CreatePayment(ctx, userID.String(), CreatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    101,
	})
	require.NoError(t, err)

	_, err = svc.HandleWebhook(ctx, WebhookRequest{Reference: txn.Reference, Status: StatusSuccess})
	require.NoError(t, err)
	_, err = svc.HandleWebhook(ctx, WebhookRequest{Reference: txn.Reference, Status: StatusSuccess})
	require.NoError(t, err)

	assert.Len(t, bk.confirmed, 1)
}

func TestWebhookFailureDoesNotConfirm(t *testing.T) {
	userID := uuid.New()
	booking := pendingBooking(userID)
	svc, _, bk := newTestService(booking)
	ctx := context.Background()

	txn, err := svc.CreatePayment(ctx, userID.String(), CreatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    101,
	})
	require.NoError(t, err)

	settled, err := svc.HandleWebhook(ctx, WebhookRequest{Reference: txn.Reference, Status: StatusFailed})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, settled.Status)
	assert.Empty(t, bk.confirmed)
}

func TestWebhookUnknownReference(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.HandleWebhook(context.Background(), WebhookRequest{
		Reference: "SD000",
		Status:    StatusSuccess,
	})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestWebhookConfirmFailureStillSettles(t *testing.T) {
	userID := uuid.New()
	booking := pendingBooking(userID)
	svc, repo, bk := newTestService(booking)
	bk.confirmErr = errors.New("queue unavailable")
	ctx := context.Background()

	txn, err := svc.CreatePayment(ctx, userID.String(), CreatePaymentRequest{
		BookingID: booking.ID.String(),
		Amount:    101,
	})
	require.NoError(t, err)

	settled, err := svc.HandleWebhook(ctx, WebhookRequest{Reference: txn.Reference, Status: StatusSuccess})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, settled.Status)

	stored, _ := repo.GetByReference(ctx, txn.Reference)
	assert.Equal(t, StatusSuccess, stored.Status)
}
