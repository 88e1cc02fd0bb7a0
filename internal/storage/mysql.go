package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"payment-stats/internal/config"
	"payment-stats/internal/logger"
	"payment-stats/internal/models"
)

const mysqlDuplicateEntry = 1062

// MySQLStore is the persistence-backed Store. It offers the same add/clear
// atomicity as the in-memory store (primary-key constraint on id) and
// answers the aggregate queries in SQL.
type MySQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

func NewMySQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*MySQLStore, error) {
	log.LogDatabase("CONNECT", "mysql", fmt.Sprintf("Connecting to MySQL at %s:%s", cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open MySQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping MySQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &MySQLStore{db: db, log: log}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "mysql", "MySQL connection established and tables initialized")
	return store, nil
}

func (s *MySQLStore) initTables() error {
	s.log.LogDatabase("INIT", "mysql", "Creating payments table if not exists")

	// seq records insertion order so the amount sort can break ties the
	// same way the in-memory store does.
	query := `
    CREATE TABLE IF NOT EXISTS payments (
        id VARCHAR(100) PRIMARY KEY,
        seq BIGINT NOT NULL AUTO_INCREMENT,
        amount DECIMAL(19,2) NOT NULL,
        currency CHAR(3) NOT NULL,
        status VARCHAR(20) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        UNIQUE KEY idx_seq (seq),
        INDEX idx_status (status),
        INDEX idx_currency (currency)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
    `

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create payments table: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "mysql", "Payments table ready")
	return nil
}

func (s *MySQLStore) AddPayment(payment models.Payment) error {
	s.log.LogDatabase("INSERT", "payments", fmt.Sprintf("Saving payment %s", payment.ID))

	query := `INSERT INTO payments (id, amount, currency, status) VALUES (?, ?, ?, ?)`

	_, err := s.db.Exec(query, payment.ID, payment.Amount, payment.Currency, string(payment.Status))
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			s.log.LogDatabase("DUPLICATE", "payments", fmt.Sprintf("Payment %s already exists", payment.ID))
			return fmt.Errorf("%w: %s", ErrDuplicateID, payment.ID)
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save payment %s: %s", payment.ID, err.Error()))
		return fmt.Errorf("failed to save payment: %w", err)
	}

	return nil
}

func (s *MySQLStore) GetPayment(id string) (models.Payment, error) {
	query := `SELECT id, amount, currency, status FROM payments WHERE id = ?`

	payment, err := scanPayment(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.log.LogDatabase("NOT_FOUND", "payments", fmt.Sprintf("Payment %s not found", id))
			return models.Payment{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, id)
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get payment %s: %s", id, err.Error()))
		return models.Payment{}, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

func (s *MySQLStore) ListPayments() ([]models.Payment, error) {
	return s.queryPayments(`SELECT id, amount, currency, status FROM payments ORDER BY seq`)
}

func (s *MySQLStore) ListPaymentsByStatus(status models.PaymentStatus) ([]models.Payment, error) {
	return s.queryPayments(
		`SELECT id, amount, currency, status FROM payments WHERE status = ? ORDER BY seq`,
		string(status))
}

func (s *MySQLStore) ListPaymentsByAmountDesc() ([]models.Payment, error) {
	return s.queryPayments(
		`SELECT id, amount, currency, status FROM payments ORDER BY amount DESC, seq ASC`)
}

func (s *MySQLStore) CountPayments() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM payments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

// CountByStatus answers the status count directly in SQL.
func (s *MySQLStore) CountByStatus(status models.PaymentStatus) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM payments WHERE status = ?`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payments by status: %w", err)
	}
	return count, nil
}

// SumAmountByStatus answers the amount total for a status directly in SQL.
func (s *MySQLStore) SumAmountByStatus(status models.PaymentStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = ?`, string(status)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments by status: %w", err)
	}
	return total, nil
}

// TotalByCurrency answers the per-currency totals directly in SQL.
func (s *MySQLStore) TotalByCurrency() (map[string]decimal.Decimal, error) {
	rows, err := s.db.Query(`SELECT currency, SUM(amount) FROM payments GROUP BY currency`)
	if err != nil {
		return nil, fmt.Errorf("failed to total payments by currency: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var currency string
		var total decimal.Decimal
		if err := rows.Scan(&currency, &total); err != nil {
			return nil, fmt.Errorf("failed to scan currency total: %w", err)
		}
		totals[currency] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return totals, nil
}

func (s *MySQLStore) Clear() error {
	s.log.LogDatabase("DELETE", "payments", "Clearing all payments")

	if _, err := s.db.Exec(`DELETE FROM payments`); err != nil {
		s.log.Error("DATABASE", "Failed to clear payments: "+err.Error())
		return fmt.Errorf("failed to clear payments: %w", err)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "mysql", "Closing MySQL connection")
	return s.db.Close()
}

func (s *MySQLStore) HealthCheck() error {
	return s.db.Ping()
}

func (s *MySQLStore) queryPayments(query string, args ...any) ([]models.Payment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.log.Error("DATABASE", "Failed to list payments: "+err.Error())
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			s.log.Error("DATABASE", "Failed to scan payment row: "+err.Error())
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return payments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (models.Payment, error) {
	var payment models.Payment
	var status string
	if err := row.Scan(&payment.ID, &payment.Amount, &payment.Currency, &status); err != nil {
		return models.Payment{}, err
	}
	payment.Status = models.PaymentStatus(status)
	return payment, nil
}
