package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Batch    BatchConfig
}

// StorageConfig selects the store backend: "memory" (default) or "mysql".
type StorageConfig struct {
	Backend string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr    string
	Enabled bool
}

type KafkaConfig struct {
	Brokers  []string
	MockMode bool
}

// BatchConfig tunes the async batch processor. TaskDelay simulates per-task
// processing time and is clamped by the processor; RatePerSecond of 0 means
// no pacing.
type BatchConfig struct {
	TaskDelay     time.Duration
	RatePerSecond int
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "memory"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USER", "root"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "payment_stats"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDuration("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			Enabled: getEnvBool("REDIS_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers:  strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", true),
		},
		Batch: BatchConfig{
			TaskDelay:     getEnvDuration("BATCH_TASK_DELAY", 0),
			RatePerSecond: getEnvInt("BATCH_RATE_PER_SECOND", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
