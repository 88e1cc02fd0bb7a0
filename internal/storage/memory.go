package storage

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"payment-stats/internal/models"
)

// InMemoryStore keeps payments in a concurrent map. Inserts are atomic
// per key, so unrelated reads and writes never serialize on a global lock.
type InMemoryStore struct {
	payments sync.Map // id -> record
	seq      atomic.Int64
}

// record tags a payment with its insertion sequence so that listings and
// the stable amount sort can break ties by arrival order.
type record struct {
	payment models.Payment
	seq     int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) AddPayment(payment models.Payment) error {
	rec := record{payment: payment, seq: s.seq.Add(1)}
	if _, loaded := s.payments.LoadOrStore(payment.ID, rec); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateID, payment.ID)
	}
	return nil
}

func (s *InMemoryStore) GetPayment(id string) (models.Payment, error) {
	value, ok := s.payments.Load(id)
	if !ok {
		return models.Payment{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, id)
	}
	return value.(record).payment, nil
}

// snapshot copies the current records and orders them by insertion sequence.
func (s *InMemoryStore) snapshot() []record {
	var records []record
	s.payments.Range(func(_, value any) bool {
		records = append(records, value.(record))
		return true
	})
	sort.Slice(records, func(i, j int) bool {
		return records[i].seq < records[j].seq
	})
	return records
}

func (s *InMemoryStore) ListPayments() ([]models.Payment, error) {
	records := s.snapshot()
	payments := make([]models.Payment, 0, len(records))
	for _, rec := range records {
		payments = append(payments, rec.payment)
	}
	return payments, nil
}

func (s *InMemoryStore) ListPaymentsByStatus(status models.PaymentStatus) ([]models.Payment, error) {
	payments := []models.Payment{}
	for _, rec := range s.snapshot() {
		if rec.payment.Status == status {
			payments = append(payments, rec.payment)
		}
	}
	return payments, nil
}

func (s *InMemoryStore) ListPaymentsByAmountDesc() ([]models.Payment, error) {
	payments, err := s.ListPayments()
	if err != nil {
		return nil, err
	}
	// The snapshot is already in insertion order, so a stable sort keeps
	// equal amounts in arrival order.
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].Amount.GreaterThan(payments[j].Amount)
	})
	return payments, nil
}

func (s *InMemoryStore) CountPayments() (int, error) {
	count := 0
	s.payments.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count, nil
}

func (s *InMemoryStore) Clear() error {
	s.payments.Range(func(k, _ any) bool {
		s.payments.Delete(k)
		return true
	})
	return nil
}
