package payments

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the payment lifecycle. Pending transactions settle exactly
// once, to success or failed, via the provider webhook.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

func (s Status) IsSettled() bool {
	return s == StatusSuccess || s == StatusFailed
}

// PaymentTransaction records one UPI collection attempt for a booking
type PaymentTransaction struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingID uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount    float64   `json:"amount" gorm:"not null"`
	Reference string    `json:"reference" gorm:"not null;uniqueIndex"`
	Status    Status    `json:"status" gorm:"not null;default:'pending'"`
	IntentURI string    `json:"intent_uri" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

// NewReference builds a collection reference from the current time
func NewReference(now time.Time) string {
	return fmt.Sprintf("SD%d", now.UnixMilli())
}

// BuildIntentURI assembles the upi://pay deep link a pilgrim's UPI app
// opens to complete the payment. Spaces are encoded as %20; UPI apps do
// not accept the form-encoded plus.
func BuildIntentURI(payeeVPA, payeeName string, amount float64, bookingID uuid.UUID, reference string) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%.2f&cu=INR&tn=%s&tr=%s",
		escapeParam(payeeVPA),
		escapeParam(payeeName),
		amount,
		escapeParam(fmt.Sprintf("Booking %s", bookingID)),
		reference,
	)
}

func escapeParam(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// CreatePaymentRequest starts a UPI collection for a booking
type CreatePaymentRequest struct {
	BookingID string  `json:"booking_id" validate:"required,uuid"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
}

// WebhookRequest is the provider's settlement callback
type WebhookRequest struct {
	Reference string `json:"reference" validate:"required"`
	Status    Status `json:"status" validate:"required,oneof=success failed"`
}
