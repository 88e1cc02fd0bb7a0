package storage_test

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payment-stats/internal/config"
	"payment-stats/internal/logger"
	"payment-stats/internal/models"
	"payment-stats/internal/storage"
)

// TestMySQLStoreIntegration exercises the persistence-backed store against
// a real MySQL instance. It requires MYSQL_TEST=1 plus the usual DB_* env
// vars and is skipped otherwise.
func TestMySQLStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("MYSQL_TEST") == "" {
		t.Skip("Skipping test because MYSQL_TEST is not set")
	}

	cfg := config.Load()
	store, err := storage.NewMySQLStore(cfg.Database, logger.New(io.Discard, false))
	if err != nil {
		t.Skip("Skipping test because MySQL is not available:", err)
		return
	}
	defer store.Close()
	require.NoError(t, store.Clear())

	require.NoError(t, store.AddPayment(newPayment(t, "MYSQL001", "100.00", "USD", models.StatusSuccess)))
	require.NoError(t, store.AddPayment(newPayment(t, "MYSQL002", "200.00", "EUR", models.StatusSuccess)))
	require.NoError(t, store.AddPayment(newPayment(t, "MYSQL003", "150.00", "GBP", models.StatusFailed)))

	t.Run("duplicate id", func(t *testing.T) {
		err := store.AddPayment(newPayment(t, "MYSQL001", "999.00", "USD", models.StatusFailed))
		assert.ErrorIs(t, err, storage.ErrDuplicateID)

		count, err := store.CountPayments()
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("aggregate queries", func(t *testing.T) {
		count, err := store.CountByStatus(models.StatusSuccess)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		total, err := store.SumAmountByStatus(models.StatusSuccess)
		require.NoError(t, err)
		assert.Equal(t, "300", total.String())

		totals, err := store.TotalByCurrency()
		require.NoError(t, err)
		require.Len(t, totals, 3)
		assert.Equal(t, "100", totals["USD"].String())
	})

	t.Run("sorted listing", func(t *testing.T) {
		sorted, err := store.ListPaymentsByAmountDesc()
		require.NoError(t, err)
		require.Len(t, sorted, 3)
		assert.Equal(t, "MYSQL002", sorted[0].ID)
		assert.Equal(t, "MYSQL003", sorted[1].ID)
		assert.Equal(t, "MYSQL001", sorted[2].ID)
	})

	require.NoError(t, store.Clear())
}
