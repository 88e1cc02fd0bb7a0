package stats_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-stats/internal/models"
	"payment-stats/internal/stats"
)

func payment(t *testing.T, id, amount, currency string, status models.PaymentStatus) models.Payment {
	t.Helper()
	p, err := models.NewPayment(id, decimal.RequireFromString(amount), currency, status)
	require.NoError(t, err)
	return p
}

func TestComputeStatisticsScenario(t *testing.T) {
	snapshot := []models.Payment{
		payment(t, "A", "100.00", "USD", models.StatusSuccess),
		payment(t, "B", "200.00", "EUR", models.StatusSuccess),
		payment(t, "C", "150.00", "GBP", models.StatusFailed),
	}

	statistics := stats.Compute(snapshot)

	assert.Equal(t, 3, statistics.TotalPayments)
	assert.Equal(t, 2, statistics.SuccessfulPayments)
	assert.Equal(t, 1, statistics.FailedPayments)
	assert.Equal(t, 0, statistics.PendingPayments)
	assert.True(t, statistics.TotalSuccessfulAmount.Equal(decimal.RequireFromString("300.00")))
	assert.True(t, statistics.AverageSuccessfulAmount.Equal(decimal.RequireFromString("150.00")))
}

func TestComputeStatisticsEmptySnapshot(t *testing.T) {
	statistics := stats.Compute(nil)

	assert.Zero(t, statistics.TotalPayments)
	assert.True(t, statistics.TotalSuccessfulAmount.IsZero())
	assert.True(t, statistics.AverageSuccessfulAmount.IsZero())
}

func TestStatusCountsPartitionTotal(t *testing.T) {
	snapshot := []models.Payment{
		payment(t, "A", "10", "USD", models.StatusSuccess),
		payment(t, "B", "20", "USD", models.StatusFailed),
		payment(t, "C", "30", "USD", models.StatusPending),
		payment(t, "D", "40", "USD", models.StatusPending),
		payment(t, "E", "50", "USD", models.StatusSuccess),
	}

	statistics := stats.Compute(snapshot)
	sum := statistics.SuccessfulPayments + statistics.FailedPayments + statistics.PendingPayments
	assert.Equal(t, statistics.TotalPayments, sum)
}

func TestDecimalAdditionIsExact(t *testing.T) {
	snapshot := []models.Payment{
		payment(t, "A", "0.10", "USD", models.StatusSuccess),
		payment(t, "B", "0.20", "USD", models.StatusSuccess),
	}

	statistics := stats.Compute(snapshot)
	assert.True(t, statistics.TotalSuccessfulAmount.Equal(decimal.RequireFromString("0.30")),
		"expected exactly 0.30, got %s", statistics.TotalSuccessfulAmount)
}

func TestAverageIsZeroWithoutSuccesses(t *testing.T) {
	snapshot := []models.Payment{
		payment(t, "A", "100", "USD", models.StatusFailed),
		payment(t, "B", "200", "USD", models.StatusPending),
	}

	statistics := stats.Compute(snapshot)
	assert.True(t, statistics.AverageSuccessfulAmount.IsZero())
}

func TestAverageRoundsHalfUp(t *testing.T) {
	// 0.01 + 0.02 over two payments averages 0.015, which rounds up.
	snapshot := []models.Payment{
		payment(t, "A", "0.01", "USD", models.StatusSuccess),
		payment(t, "B", "0.02", "USD", models.StatusSuccess),
	}

	statistics := stats.Compute(snapshot)
	assert.True(t, statistics.AverageSuccessfulAmount.Equal(decimal.RequireFromString("0.02")),
		"expected 0.02, got %s", statistics.AverageSuccessfulAmount)
}

func TestCountByStatus(t *testing.T) {
	snapshot := []models.Payment{
		payment(t, "A", "10", "USD", models.StatusSuccess),
		payment(t, "B", "20", "USD", models.StatusSuccess),
		payment(t, "C", "30", "USD", models.StatusFailed),
		payment(t, "D", "40", "USD", models.StatusPending),
	}

	counts := stats.CountByStatus(snapshot)

	assert.Equal(t, 2, counts[models.StatusSuccess])
	assert.Equal(t, 1, counts[models.StatusFailed])
	assert.Equal(t, 1, counts[models.StatusPending])
}

func TestCountByStatusAlwaysHasAllKeys(t *testing.T) {
	counts := stats.CountByStatus(nil)

	require.Len(t, counts, 3)
	for _, status := range models.Statuses {
		count, ok := counts[status]
		assert.True(t, ok, "status %s missing", status)
		assert.Zero(t, count)
	}
}

func TestTotalByCurrency(t *testing.T) {
	snapshot := []models.Payment{
		payment(t, "A", "100", "USD", models.StatusSuccess),
		payment(t, "B", "200", "USD", models.StatusFailed),
		payment(t, "C", "150", "EUR", models.StatusPending),
	}

	totals := stats.TotalByCurrency(snapshot)

	require.Len(t, totals, 2)
	assert.True(t, totals["USD"].Equal(decimal.RequireFromString("300")))
	assert.True(t, totals["EUR"].Equal(decimal.RequireFromString("150")))

	_, ok := totals["GBP"]
	assert.False(t, ok, "a currency never submitted must be absent")
}

func TestSummaryWording(t *testing.T) {
	none := stats.Compute(nil)
	assert.Equal(t, "No payments processed", none.Summary())

	one := stats.Compute([]models.Payment{
		payment(t, "A", "10", "USD", models.StatusSuccess),
	})
	assert.Equal(t, "1 payment: 100.0% success rate", one.Summary())

	many := stats.Compute([]models.Payment{
		payment(t, "A", "10", "USD", models.StatusSuccess),
		payment(t, "B", "20", "USD", models.StatusFailed),
		payment(t, "C", "30", "USD", models.StatusFailed),
	})
	assert.Equal(t, "3 payments: 33.3% success rate", many.Summary())
}

func TestStatisticsString(t *testing.T) {
	statistics := stats.Compute([]models.Payment{
		payment(t, "A", "100.00", "USD", models.StatusSuccess),
		payment(t, "B", "50.00", "USD", models.StatusFailed),
	})

	report := statistics.String()
	assert.Contains(t, report, "Total Payments: 2")
	assert.Contains(t, report, "Successful: 1")
	assert.Contains(t, report, "Total Successful Amount: $100")
}
