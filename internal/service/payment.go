package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"payment-stats/internal/cache"
	"payment-stats/internal/logger"
	"payment-stats/internal/models"
	"payment-stats/internal/stats"
	"payment-stats/internal/storage"
)

// EventPublisher pushes mutation events to the message broker. Satisfied by
// kafka.Producer.
type EventPublisher interface {
	PublishPaymentEvent(event *models.PaymentEvent) error
}

// PaymentService is the request-layer API over the store, the statistics
// engine, the optional cache and the optional event publisher. Mutations
// evict every cached aggregate synchronously before they return, so no
// caller can observe stale statistics after a successful mutation. With no
// cache configured, every read recomputes from the live store.
type PaymentService struct {
	store  storage.Store
	cache  cache.Cache
	events EventPublisher
	log    *logger.Logger
}

// NewPaymentService wires the service. Both c and events may be nil.
func NewPaymentService(store storage.Store, c cache.Cache, events EventPublisher, log *logger.Logger) *PaymentService {
	return &PaymentService{
		store:  store,
		cache:  c,
		events: events,
		log:    log,
	}
}

// AddPayment inserts the payment. Duplicate IDs surface as
// storage.ErrDuplicateID with the store unchanged.
func (s *PaymentService) AddPayment(ctx context.Context, payment models.Payment) error {
	if err := s.store.AddPayment(payment); err != nil {
		if errors.Is(err, storage.ErrDuplicateID) {
			s.log.LogPayment("DUPLICATE", payment.ID, "Rejected: ID already exists")
		} else {
			s.log.Error("PAYMENT", fmt.Sprintf("Failed to add payment %s: %v", payment.ID, err))
		}
		return err
	}

	s.evictCaches(ctx)
	s.log.LogPayment("ADDED", payment.ID, fmt.Sprintf("Stored %s %s with status %s", payment.Amount, payment.Currency, payment.Status))
	s.publishEvent("payment.added", &payment)
	return nil
}

// GetPayment returns the payment or storage.ErrPaymentNotFound; a missing
// ID is a normal negative result.
func (s *PaymentService) GetPayment(ctx context.Context, id string) (models.Payment, error) {
	return s.store.GetPayment(id)
}

// ListPayments returns a point-in-time snapshot of all payments.
func (s *PaymentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.store.ListPayments()
}

// ListPaymentsByStatus returns the payments with the given status, served
// from cache when possible.
func (s *PaymentService) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	if !status.Valid() {
		return nil, &models.ValidationError{Field: "status", Message: fmt.Sprintf("unknown payment status %q", status)}
	}

	key := cache.KeyByStatus(status)
	var cached []models.Payment
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	payments, err := s.store.ListPaymentsByStatus(status)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, key, payments, cache.ListingTTL)
	return payments, nil
}

// ListPaymentsByAmountDesc returns all payments ordered by amount
// descending, ties kept in insertion order, served from cache when possible.
func (s *PaymentService) ListPaymentsByAmountDesc(ctx context.Context) ([]models.Payment, error) {
	var cached []models.Payment
	if s.cacheGet(ctx, cache.KeySortedListing, &cached) {
		return cached, nil
	}

	payments, err := s.store.ListPaymentsByAmountDesc()
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, cache.KeySortedListing, payments, cache.ListingTTL)
	return payments, nil
}

// Statistics computes the aggregate statistics over the current snapshot,
// served from cache when possible.
func (s *PaymentService) Statistics(ctx context.Context) (stats.PaymentStatistics, error) {
	var cached stats.PaymentStatistics
	if s.cacheGet(ctx, cache.KeyStatistics, &cached) {
		return cached, nil
	}

	snapshot, err := s.store.ListPayments()
	if err != nil {
		return stats.PaymentStatistics{}, err
	}

	statistics := stats.Compute(snapshot)
	s.cachePut(ctx, cache.KeyStatistics, statistics, cache.StatisticsTTL)
	return statistics, nil
}

// CountByStatus maps each status to its count, all three keys present.
func (s *PaymentService) CountByStatus(ctx context.Context) (map[models.PaymentStatus]int, error) {
	snapshot, err := s.store.ListPayments()
	if err != nil {
		return nil, err
	}
	return stats.CountByStatus(snapshot), nil
}

// TotalByCurrency maps each observed currency to its exact amount total.
func (s *PaymentService) TotalByCurrency(ctx context.Context) (map[string]decimal.Decimal, error) {
	snapshot, err := s.store.ListPayments()
	if err != nil {
		return nil, err
	}
	return stats.TotalByCurrency(snapshot), nil
}

// Count returns the current number of stored payments.
func (s *PaymentService) Count(ctx context.Context) (int, error) {
	return s.store.CountPayments()
}

// Clear removes every payment and invalidates the caches.
func (s *PaymentService) Clear(ctx context.Context) error {
	if err := s.store.Clear(); err != nil {
		s.log.Error("PAYMENT", "Failed to clear payments: "+err.Error())
		return err
	}

	s.evictCaches(ctx)
	s.log.LogPayment("CLEARED", "-", "All payments removed")
	s.publishEvent("payments.cleared", nil)
	return nil
}

// ValidatePayment classifies the payment without mutating anything.
func (s *PaymentService) ValidatePayment(payment models.Payment) string {
	return payment.Validate()
}

// evictCaches runs inside every mutating operation, before the mutation is
// reported back to the caller.
func (s *PaymentService) evictCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.EvictAll(ctx, cache.MutationKeys()...); err != nil {
		s.log.Error("CACHE", "Failed to evict caches after mutation: "+err.Error())
	}
}

func (s *PaymentService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Error("CACHE", fmt.Sprintf("Failed to read %s: %v", key, err))
	}
	return false
}

func (s *PaymentService) cachePut(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, value, ttl); err != nil {
		s.log.Error("CACHE", fmt.Sprintf("Failed to write %s: %v", key, err))
	}
}

func (s *PaymentService) publishEvent(eventType string, payment *models.Payment) {
	if s.events == nil {
		return
	}

	event := &models.PaymentEvent{
		Type:      eventType,
		Timestamp: time.Now(),
	}
	if payment != nil {
		event.PaymentID = payment.ID
		event.Payment = payment
	}

	if err := s.events.PublishPaymentEvent(event); err != nil {
		// The mutation already committed; a lost event is logged, not
		// surfaced.
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s event: %v", eventType, err))
	}
}
