package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusSuccess PaymentStatus = "SUCCESS"
	StatusFailed  PaymentStatus = "FAILED"
)

// Statuses lists every valid payment status.
var Statuses = []PaymentStatus{StatusPending, StatusSuccess, StatusFailed}

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// highAmountThreshold is the amount above which Validate reports a warning.
var highAmountThreshold = decimal.NewFromInt(1_000_000)

// Payment is a single transaction record. Construct it through NewPayment;
// a constructed payment is treated as immutable and is copied by value
// everywhere, so status or amount changes require a new record.
type Payment struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   PaymentStatus   `json:"status"`
}

// ValidationError reports a payment field that failed construction-time
// validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payment %s: %s", e.Field, e.Message)
}

// NewPayment validates and builds a payment. Every field is required;
// a negative amount is rejected with the offending value in the message.
func NewPayment(id string, amount decimal.Decimal, currency string, status PaymentStatus) (Payment, error) {
	if id == "" {
		return Payment{}, &ValidationError{Field: "id", Message: "payment ID cannot be empty"}
	}
	if currency == "" {
		return Payment{}, &ValidationError{Field: "currency", Message: "currency cannot be empty"}
	}
	if len(currency) != 3 {
		return Payment{}, &ValidationError{Field: "currency", Message: fmt.Sprintf("currency must be a 3-letter code, got %q", currency)}
	}
	if status == "" {
		return Payment{}, &ValidationError{Field: "status", Message: "payment status cannot be empty"}
	}
	if !status.Valid() {
		return Payment{}, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown payment status %q", status)}
	}
	if amount.IsNegative() {
		return Payment{}, &ValidationError{Field: "amount", Message: fmt.Sprintf("payment amount cannot be negative: %s", amount)}
	}

	return Payment{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Status:   status,
	}, nil
}

// Equal reports whether two payments refer to the same transaction.
// Identity is keyed solely by ID.
func (p Payment) Equal(other Payment) bool {
	return p.ID == other.ID
}

// Describe returns a status-tagged human-readable line for the payment.
func (p Payment) Describe() string {
	switch p.Status {
	case StatusSuccess:
		return fmt.Sprintf("✓ Payment %s succeeded: %s %s", p.ID, p.Amount, p.Currency)
	case StatusFailed:
		return fmt.Sprintf("✗ Payment %s failed: %s %s", p.ID, p.Amount, p.Currency)
	default:
		return fmt.Sprintf("⏳ Payment %s pending: %s %s", p.ID, p.Amount, p.Currency)
	}
}

// Validate classifies the payment. The rules are checked in priority order
// and the first match wins, so a failed payment with a non-positive amount
// still reports the amount problem.
func (p Payment) Validate() string {
	switch {
	case !p.Amount.IsPositive():
		return "Invalid: amount must be positive"
	case p.Amount.GreaterThan(highAmountThreshold):
		return "Warning: unusually high amount"
	case p.Status == StatusFailed:
		return "Failed payment"
	case p.Status == StatusPending:
		return "Pending approval"
	default:
		return "Valid payment"
	}
}

func (p Payment) String() string {
	return fmt.Sprintf("Payment{id='%s', amount=%s, currency='%s', status=%s}",
		p.ID, p.Amount, p.Currency, p.Status)
}

// PaymentEvent is published to Kafka after a successful store mutation.
type PaymentEvent struct {
	Type      string    `json:"type"`
	PaymentID string    `json:"payment_id"`
	Payment   *Payment  `json:"payment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
