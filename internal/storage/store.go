package storage

import (
	"errors"

	"payment-stats/internal/models"
)

// ErrDuplicateID is returned by AddPayment when the payment ID is already
// present. The store is left unchanged.
var ErrDuplicateID = errors.New("payment ID already exists")

// ErrPaymentNotFound is returned by GetPayment for an unknown ID. It is a
// normal negative result, not a failure of the store.
var ErrPaymentNotFound = errors.New("payment not found")

// Store is the shared payment collection. Implementations must be safe for
// concurrent use by multiple readers and writers without external locking,
// and every returned slice is a snapshot that later mutations do not affect.
type Store interface {
	// AddPayment inserts the payment atomically. It fails with
	// ErrDuplicateID when the ID is already present.
	AddPayment(payment models.Payment) error

	// GetPayment returns the payment or ErrPaymentNotFound.
	GetPayment(id string) (models.Payment, error)

	// ListPayments returns a snapshot of all payments in insertion order.
	ListPayments() ([]models.Payment, error)

	// ListPaymentsByStatus returns the payments with the given status,
	// in insertion order.
	ListPaymentsByStatus(status models.PaymentStatus) ([]models.Payment, error)

	// ListPaymentsByAmountDesc returns all payments ordered by amount
	// descending; equal amounts keep their insertion order.
	ListPaymentsByAmountDesc() ([]models.Payment, error)

	// CountPayments returns the current number of stored payments.
	CountPayments() (int, error)

	// Clear removes every payment.
	Clear() error
}
