// Package processor fans a batch of payment operations out to independent
// goroutines and gathers the per-task results into a single completion
// handle (scatter-gather). Individual failures never abort sibling tasks.
package processor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"payment-stats/internal/config"
	"payment-stats/internal/logger"
	"payment-stats/internal/models"
)

// maxTaskDelay bounds the configurable simulated processing delay.
const maxTaskDelay = time.Second

// highValueThreshold marks payments called out during batch classification.
var highValueThreshold = decimal.NewFromInt(10_000)

// PaymentAdder is the mutation entry point for batch tasks. It is satisfied
// by the payment service, which keeps cache eviction inside each add.
type PaymentAdder interface {
	AddPayment(ctx context.Context, payment models.Payment) error
}

// BatchError records one failed task.
type BatchError struct {
	Index     int
	PaymentID string
	Err       error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("payment %s (task %d): %v", e.PaymentID, e.Index, e.Err)
}

func (e BatchError) Unwrap() error {
	return e.Err
}

// BatchResult is the completion handle for a submitted batch. It resolves
// once every task has finished, successfully or not.
type BatchResult struct {
	done chan struct{}

	mu   sync.Mutex
	errs []BatchError
}

// Done returns a channel closed when all tasks have completed, for callers
// that poll or select instead of blocking.
func (r *BatchResult) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until every task has completed and returns the per-task
// errors ordered by task index. Sibling successes stand regardless of
// failures; there are no all-or-nothing semantics across the batch.
func (r *BatchResult) Wait() []BatchError {
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Slice(r.errs, func(i, j int) bool {
		return r.errs[i].Index < r.errs[j].Index
	})
	return r.errs
}

func (r *BatchResult) record(index int, paymentID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, BatchError{Index: index, PaymentID: paymentID, Err: err})
}

// ValidationResult is the completion handle for a batch classification run.
type ValidationResult struct {
	done    chan struct{}
	results []string
}

func (r *ValidationResult) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until every classification has completed and returns one
// labeled string per input payment, in input order.
func (r *ValidationResult) Wait() []string {
	<-r.done
	return r.results
}

// BatchProcessor schedules batch work. A nil limiter launches tasks
// unpaced.
type BatchProcessor struct {
	adder     PaymentAdder
	log       *logger.Logger
	limiter   *rate.Limiter
	taskDelay time.Duration
}

func NewBatchProcessor(adder PaymentAdder, cfg config.BatchConfig, log *logger.Logger) *BatchProcessor {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RatePerSecond)
	}

	delay := cfg.TaskDelay
	if delay > maxTaskDelay {
		delay = maxTaskDelay
	}

	return &BatchProcessor{
		adder:     adder,
		log:       log,
		limiter:   limiter,
		taskDelay: delay,
	}
}

// SubmitPayments launches one task per payment, each adding its payment
// through the configured adder. Duplicate IDs and other per-task failures
// are captured on the handle without aborting the rest of the batch.
func (p *BatchProcessor) SubmitPayments(ctx context.Context, payments []models.Payment) *BatchResult {
	result := &BatchResult{done: make(chan struct{})}

	p.log.LogBatch("SUBMIT", fmt.Sprintf("Scheduling %d payment tasks", len(payments)))

	var wg sync.WaitGroup
	for i, payment := range payments {
		wg.Add(1)
		go func(index int, payment models.Payment) {
			defer wg.Done()

			if err := p.pace(ctx); err != nil {
				result.record(index, payment.ID, err)
				return
			}

			if err := p.adder.AddPayment(ctx, payment); err != nil {
				p.log.LogBatch("TASK_FAILED", fmt.Sprintf("Payment %s: %v", payment.ID, err))
				result.record(index, payment.ID, err)
				return
			}
			p.log.LogBatch("PROCESSED", payment.ID)
		}(i, payment)
	}

	go func() {
		wg.Wait()
		close(result.done)
		p.log.LogBatch("COMPLETE", fmt.Sprintf("Batch of %d finished", len(payments)))
	}()

	return result
}

// SubmitValidations launches one classification task per payment. No store
// mutation happens; the handle resolves to labeled strings in input order
// even though task execution order is unspecified.
func (p *BatchProcessor) SubmitValidations(ctx context.Context, payments []models.Payment) *ValidationResult {
	result := &ValidationResult{
		done:    make(chan struct{}),
		results: make([]string, len(payments)),
	}

	p.log.LogBatch("SUBMIT", fmt.Sprintf("Scheduling %d validation tasks", len(payments)))

	var wg sync.WaitGroup
	for i, payment := range payments {
		wg.Add(1)
		go func(index int, payment models.Payment) {
			defer wg.Done()
			// Each task owns exactly one result slot, so no lock is needed.
			result.results[index] = classify(payment)
		}(i, payment)
	}

	go func() {
		wg.Wait()
		close(result.done)
	}()

	return result
}

// pace applies the optional rate limit and bounded simulated delay. No
// store state is held while waiting.
func (p *BatchProcessor) pace(ctx context.Context) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("task pacing interrupted: %w", err)
		}
	}
	if p.taskDelay > 0 {
		select {
		case <-time.After(p.taskDelay):
		case <-ctx.Done():
			return fmt.Errorf("task delayed past cancellation: %w", ctx.Err())
		}
	}
	return nil
}

// classify labels one payment for a validation batch. High-value payments
// are called out first, then failed and pending statuses.
func classify(payment models.Payment) string {
	switch {
	case payment.Amount.GreaterThan(highValueThreshold):
		return fmt.Sprintf("⚠ High-value payment: %s", payment.ID)
	case payment.Status == models.StatusFailed:
		return fmt.Sprintf("✗ Failed payment: %s", payment.ID)
	case payment.Status == models.StatusPending:
		return fmt.Sprintf("⏳ Pending payment: %s", payment.ID)
	default:
		return fmt.Sprintf("✓ Valid: %s", payment.ID)
	}
}
