package storage_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-stats/internal/models"
	"payment-stats/internal/storage"
)

func newPayment(t *testing.T, id, amount, currency string, status models.PaymentStatus) models.Payment {
	t.Helper()
	payment, err := models.NewPayment(id, decimal.RequireFromString(amount), currency, status)
	require.NoError(t, err)
	return payment
}

func TestAddAndGetPayment(t *testing.T) {
	store := storage.NewInMemoryStore()
	payment := newPayment(t, "PAY001", "100.00", "USD", models.StatusSuccess)

	require.NoError(t, store.AddPayment(payment))

	got, err := store.GetPayment("PAY001")
	require.NoError(t, err)
	assert.True(t, got.Equal(payment))
	assert.True(t, got.Amount.Equal(payment.Amount))
}

func TestGetMissingPayment(t *testing.T) {
	store := storage.NewInMemoryStore()

	_, err := store.GetPayment("nope")
	require.ErrorIs(t, err, storage.ErrPaymentNotFound)
	assert.Contains(t, err.Error(), "nope")
}

func TestDuplicateIDLeavesStoreUnchanged(t *testing.T) {
	store := storage.NewInMemoryStore()
	original := newPayment(t, "PAY001", "100.00", "USD", models.StatusSuccess)
	require.NoError(t, store.AddPayment(original))

	duplicate := newPayment(t, "PAY001", "999.00", "EUR", models.StatusFailed)
	err := store.AddPayment(duplicate)
	require.ErrorIs(t, err, storage.ErrDuplicateID)
	assert.Contains(t, err.Error(), "PAY001")

	count, err := store.CountPayments()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.GetPayment("PAY001")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(original.Amount), "original entry must survive the duplicate add")
}

func TestListPaymentsReturnsSnapshot(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.AddPayment(newPayment(t, "PAY001", "100.00", "USD", models.StatusSuccess)))
	require.NoError(t, store.AddPayment(newPayment(t, "PAY002", "200.00", "EUR", models.StatusSuccess)))

	snapshot, err := store.ListPayments()
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	// Mutations after the call must not leak into the snapshot.
	require.NoError(t, store.AddPayment(newPayment(t, "PAY003", "300.00", "GBP", models.StatusPending)))
	require.NoError(t, store.Clear())
	assert.Len(t, snapshot, 2)
	assert.Equal(t, "PAY001", snapshot[0].ID)
	assert.Equal(t, "PAY002", snapshot[1].ID)
}

func TestListPaymentsByStatus(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.AddPayment(newPayment(t, "PAY001", "100.00", "USD", models.StatusSuccess)))
	require.NoError(t, store.AddPayment(newPayment(t, "PAY002", "200.00", "EUR", models.StatusFailed)))
	require.NoError(t, store.AddPayment(newPayment(t, "PAY003", "300.00", "GBP", models.StatusSuccess)))

	successes, err := store.ListPaymentsByStatus(models.StatusSuccess)
	require.NoError(t, err)
	require.Len(t, successes, 2)
	assert.Equal(t, "PAY001", successes[0].ID)
	assert.Equal(t, "PAY003", successes[1].ID)

	pendings, err := store.ListPaymentsByStatus(models.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pendings)
}

func TestSortByAmountDescIsStable(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.AddPayment(newPayment(t, "PAY001", "100.00", "USD", models.StatusSuccess)))
	require.NoError(t, store.AddPayment(newPayment(t, "PAY002", "250.00", "EUR", models.StatusSuccess)))
	// Two payments with equal amounts must keep their insertion order.
	require.NoError(t, store.AddPayment(newPayment(t, "PAY003", "100.00", "GBP", models.StatusFailed)))

	for i := 0; i < 5; i++ {
		sorted, err := store.ListPaymentsByAmountDesc()
		require.NoError(t, err)
		require.Len(t, sorted, 3)
		assert.Equal(t, "PAY002", sorted[0].ID)
		assert.Equal(t, "PAY001", sorted[1].ID)
		assert.Equal(t, "PAY003", sorted[2].ID)
	}
}

func TestClearEmptiesStore(t *testing.T) {
	store := storage.NewInMemoryStore()
	require.NoError(t, store.AddPayment(newPayment(t, "PAY001", "100.00", "USD", models.StatusSuccess)))

	require.NoError(t, store.Clear())

	count, err := store.CountPayments()
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = store.GetPayment("PAY001")
	assert.ErrorIs(t, err, storage.ErrPaymentNotFound)
}

func TestConcurrentAddsWithSameID(t *testing.T) {
	store := storage.NewInMemoryStore()
	payment := newPayment(t, "PAY001", "100.00", "USD", models.StatusSuccess)

	const attempts = 100
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.AddPayment(payment)
		}()
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, storage.ErrDuplicateID)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent add must win")

	count, err := store.CountPayments()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConcurrentDistinctAdds(t *testing.T) {
	store := storage.NewInMemoryStore()

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payment := models.Payment{
				ID:       fmt.Sprintf("PAY%03d", i),
				Amount:   decimal.NewFromInt(int64(i)),
				Currency: "USD",
				Status:   models.StatusSuccess,
			}
			assert.NoError(t, store.AddPayment(payment))
		}(i)
	}
	wg.Wait()

	count, err := store.CountPayments()
	require.NoError(t, err)
	assert.Equal(t, n, count)
}
