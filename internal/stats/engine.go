// Package stats computes aggregate statistics over a snapshot of payments.
// All functions are pure: they read the snapshot they are given and never
// touch the store, so callers decide when a recomputation happens.
package stats

import (
	"fmt"

	"github.com/shopspring/decimal"

	"payment-stats/internal/models"
)

// PaymentStatistics is a derived aggregate over one snapshot. It is never
// persisted as a source of truth.
type PaymentStatistics struct {
	TotalPayments           int             `json:"total_payments"`
	SuccessfulPayments      int             `json:"successful_payments"`
	FailedPayments          int             `json:"failed_payments"`
	PendingPayments         int             `json:"pending_payments"`
	TotalSuccessfulAmount   decimal.Decimal `json:"total_successful_amount"`
	AverageSuccessfulAmount decimal.Decimal `json:"average_successful_amount"`
}

// Compute derives the full statistics for a snapshot. Amount math is exact
// decimal arithmetic; the average is rounded half-up to 2 places and is
// exactly zero when there are no successful payments.
func Compute(snapshot []models.Payment) PaymentStatistics {
	statistics := PaymentStatistics{
		TotalPayments:           len(snapshot),
		TotalSuccessfulAmount:   decimal.Zero,
		AverageSuccessfulAmount: decimal.Zero,
	}

	for _, payment := range snapshot {
		switch payment.Status {
		case models.StatusSuccess:
			statistics.SuccessfulPayments++
			statistics.TotalSuccessfulAmount = statistics.TotalSuccessfulAmount.Add(payment.Amount)
		case models.StatusFailed:
			statistics.FailedPayments++
		case models.StatusPending:
			statistics.PendingPayments++
		}
	}

	if statistics.SuccessfulPayments > 0 {
		statistics.AverageSuccessfulAmount = statistics.TotalSuccessfulAmount.DivRound(
			decimal.NewFromInt(int64(statistics.SuccessfulPayments)), 2)
	}

	return statistics
}

// CountByStatus maps every status to its count in the snapshot. All three
// statuses are always present, defaulting to 0.
func CountByStatus(snapshot []models.Payment) map[models.PaymentStatus]int {
	counts := make(map[models.PaymentStatus]int, len(models.Statuses))
	for _, status := range models.Statuses {
		counts[status] = 0
	}
	for _, payment := range snapshot {
		counts[payment.Status]++
	}
	return counts
}

// TotalByCurrency maps each currency observed in the snapshot to the exact
// sum of all its payments regardless of status. Currencies with no payments
// are absent.
func TotalByCurrency(snapshot []models.Payment) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, payment := range snapshot {
		totals[payment.Currency] = totals[payment.Currency].Add(payment.Amount)
	}
	return totals
}

func (s PaymentStatistics) String() string {
	return fmt.Sprintf(`Payment Statistics:
------------------
Total Payments: %d
Successful: %d
Failed: %d
Pending: %d
Total Successful Amount: $%s
Average Successful Amount: $%s
`,
		s.TotalPayments,
		s.SuccessfulPayments,
		s.FailedPayments,
		s.PendingPayments,
		s.TotalSuccessfulAmount,
		s.AverageSuccessfulAmount)
}

// Summary returns a one-line report with special wording for zero and for
// exactly one payment.
func (s PaymentStatistics) Summary() string {
	switch s.TotalPayments {
	case 0:
		return "No payments processed"
	case 1:
		return fmt.Sprintf("1 payment: %s", s.statusDescription())
	default:
		return fmt.Sprintf("%d payments: %s", s.TotalPayments, s.statusDescription())
	}
}

// statusDescription guards the division even though Summary never reaches
// it with zero payments.
func (s PaymentStatistics) statusDescription() string {
	rate := 0.0
	if s.TotalPayments > 0 {
		rate = float64(s.SuccessfulPayments) * 100.0 / float64(s.TotalPayments)
	}
	return fmt.Sprintf("%.1f%% success rate", rate)
}
