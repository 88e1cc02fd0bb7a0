package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"payment-stats/internal/cache"
	"payment-stats/internal/config"
	"payment-stats/internal/kafka"
	"payment-stats/internal/logger"
	"payment-stats/internal/models"
	"payment-stats/internal/processor"
	"payment-stats/internal/service"
	"payment-stats/internal/storage"
	"payment-stats/internal/utils"
)

var log *logger.Logger

func main() {
	log = logger.NewLogger()
	defer log.Close()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn("ENV", "Error loading .env file, using environment variables")
	}

	log.LogProcess("STARTUP", "Payment Statistics service starting up...")

	cfg := config.Load()
	log.Info("CONFIG", "Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := buildStore(cfg)

	log.LogProcess("KAFKA", "Initializing Kafka producer...")
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MockMode, log)
	if err != nil {
		log.Fatal("KAFKA", "Failed to create Kafka producer: "+err.Error())
	}
	defer producer.Close()

	paymentCache := buildCache(ctx, cfg)

	paymentService := service.NewPaymentService(store, paymentCache, producer, log)
	log.LogProcess("SERVICE", "Payment service initialized")

	batchProcessor := processor.NewBatchProcessor(paymentService, cfg.Batch, log)
	log.LogProcess("SERVICE", "Batch processor initialized")

	runDemo(ctx, paymentService, batchProcessor)

	log.LogProcess("SHUTDOWN", "Payment Statistics service finished")
}

func buildStore(cfg *config.Config) storage.Store {
	if cfg.Storage.Backend == "mysql" {
		log.LogProcess("DATABASE", "Initializing MySQL storage...")
		store, err := storage.NewMySQLStore(cfg.Database, log)
		if err != nil {
			log.Fatal("DATABASE", "Failed to initialize MySQL: "+err.Error())
		}
		return store
	}

	log.LogProcess("DATABASE", "Using in-memory storage")
	return storage.NewInMemoryStore()
}

func buildCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if !cfg.Redis.Enabled {
		log.Info("CACHE", "Redis cache disabled, reads recompute from the store")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("CACHE", "Redis unreachable, continuing without cache: "+err.Error())
		return nil
	}

	log.LogProcess("CACHE", "Redis cache connected at "+cfg.Redis.Addr)
	return cache.NewRedisCache(client, log)
}

// runDemo exercises the full API surface against a seeded data set.
func runDemo(ctx context.Context, svc *service.PaymentService, proc *processor.BatchProcessor) {
	fmt.Println("=== Payment Statistics Service ===")
	fmt.Println()

	samplePayments := seedPayments()

	fmt.Println("1. Adding payments sequentially...")
	for _, payment := range samplePayments {
		if err := svc.AddPayment(ctx, payment); err != nil {
			log.Error("DEMO", "Failed to add payment: "+err.Error())
		}
	}
	count, _ := svc.Count(ctx)
	fmt.Printf("✓ Added %d payments\n\n", count)

	fmt.Println("2. All payments:")
	all, _ := svc.ListPayments(ctx)
	for _, payment := range all {
		fmt.Printf("  %s\n", payment.Describe())
	}
	fmt.Println()

	fmt.Println("3. Payments by status:")
	for _, status := range models.Statuses {
		filtered, _ := svc.ListPaymentsByStatus(ctx, status)
		fmt.Printf("  %s: %d payments\n", status, len(filtered))
		for _, payment := range filtered {
			fmt.Printf("    - %s\n", payment)
		}
	}
	fmt.Println()

	fmt.Println("4. Payment statistics:")
	statistics, _ := svc.Statistics(ctx)
	fmt.Println(statistics)
	fmt.Printf("  Summary: %s\n\n", statistics.Summary())

	fmt.Println("5. Payments sorted by amount (descending):")
	sorted, _ := svc.ListPaymentsByAmountDesc(ctx)
	for _, payment := range sorted {
		fmt.Printf("  %s: %s %s\n", payment.ID, payment.Amount, payment.Currency)
	}
	fmt.Println()

	fmt.Println("6. Count by status:")
	counts, _ := svc.CountByStatus(ctx)
	for _, status := range models.Statuses {
		fmt.Printf("  %s: %d\n", status, counts[status])
	}
	fmt.Println()

	fmt.Println("7. Total amount by currency:")
	totals, _ := svc.TotalByCurrency(ctx)
	for currency, total := range totals {
		fmt.Printf("  %s: %s\n", currency, total)
	}
	fmt.Println()

	fmt.Println("8. Async batch processing...")
	batch := []models.Payment{
		mustPayment(utils.GeneratePaymentID(), "88.00", "USD", models.StatusSuccess),
		mustPayment(utils.GeneratePaymentID(), "15000.00", "EUR", models.StatusSuccess),
		mustPayment(utils.GeneratePaymentID(), "42.50", "GBP", models.StatusPending),
	}
	if errs := proc.SubmitPayments(ctx, batch).Wait(); len(errs) > 0 {
		for _, batchErr := range errs {
			fmt.Printf("  ✗ %s\n", batchErr)
		}
	}
	count, _ = svc.Count(ctx)
	fmt.Printf("✓ Batch complete, %d payments stored\n\n", count)

	fmt.Println("9. Async batch validation:")
	for _, line := range proc.SubmitValidations(ctx, batch).Wait() {
		fmt.Printf("  %s\n", line)
	}
	fmt.Println()

	fmt.Println("10. Duplicate handling:")
	if err := svc.AddPayment(ctx, samplePayments[0]); err != nil {
		fmt.Printf("  ✗ Rejected as expected: %v\n", err)
	}
	fmt.Println()

	fmt.Println("11. Clearing all payments...")
	if err := svc.Clear(ctx); err != nil {
		log.Error("DEMO", "Failed to clear payments: "+err.Error())
	}
	statistics, _ = svc.Statistics(ctx)
	fmt.Printf("  Summary after clear: %s\n", statistics.Summary())
}

func seedPayments() []models.Payment {
	return []models.Payment{
		mustPayment("PAY001", "150.00", "USD", models.StatusSuccess),
		mustPayment("PAY002", "75.50", "EUR", models.StatusSuccess),
		mustPayment("PAY003", "200.00", "USD", models.StatusFailed),
		mustPayment("PAY004", "325.75", "GBP", models.StatusSuccess),
		mustPayment("PAY005", "50.00", "USD", models.StatusPending),
		mustPayment("PAY006", "180.25", "EUR", models.StatusSuccess),
		mustPayment("PAY007", "95.00", "USD", models.StatusFailed),
		mustPayment("PAY008", "420.50", "GBP", models.StatusSuccess),
		mustPayment("PAY009", "60.00", "EUR", models.StatusPending),
		mustPayment("PAY010", "275.00", "USD", models.StatusSuccess),
	}
}

func mustPayment(id, amount, currency string, status models.PaymentStatus) models.Payment {
	payment, err := models.NewPayment(id, decimal.RequireFromString(amount), currency, status)
	if err != nil {
		log.Fatal("DEMO", "Invalid seed payment: "+err.Error())
	}
	return payment
}
