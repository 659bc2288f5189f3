package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type KafkaConfig struct {
	Brokers    []string
	EventTopic string
}

type MoMoConfig struct {
	BaseURL         string
	Environment     string
	APIUser         string
	APIKey          string
	DisbursementKey string
	CollectionKey   string
	PollAttempts    int
	PollInterval    time.Duration
}

type SMSConfig struct {
	BaseURL  string
	Username string
	APIKey   string
	SenderID string
}

type LendingConfig struct {
	Currency        string
	MinCreditScore  int
	MaxExposure     decimal.Decimal
	ReminderWindow  time.Duration // lead time before due date for reminders
	AccrualSchedule string        // cron expression for the overdue sweep
}

type Config struct {
	HTTPPort    int
	ServiceName string
	LogLevel    string
	LogFormat   string
	JWTSecret   string
	DB          DatabaseConfig
	Kafka       KafkaConfig
	MoMo        MoMoConfig
	SMS         SMSConfig
	Lending     LendingConfig
}

func (c Config) Validate() error {
	if c.DB.Password == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	return nil
}

func Load() Config {
	return Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		ServiceName: "agriloan",
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "agriloan"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "agriloan"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			EventTopic: getEnv("KAFKA_EVENT_TOPIC", "agriloan.loan-events"),
		},
		MoMo: MoMoConfig{
			BaseURL:         getEnv("MOMO_API_URL", "https://sandbox.momodeveloper.mtn.com"),
			Environment:     getEnv("MOMO_ENVIRONMENT", "sandbox"),
			APIUser:         getEnv("MOMO_API_USER", ""),
			APIKey:          getEnv("MOMO_API_KEY", ""),
			DisbursementKey: getEnv("MOMO_SUBSCRIPTION_KEY", ""),
			CollectionKey:   getEnv("MOMO_COLLECTION_KEY", ""),
			PollAttempts:    getEnvInt("MOMO_POLL_ATTEMPTS", 10),
			PollInterval:    getEnvDuration("MOMO_POLL_INTERVAL", 30*time.Second),
		},
		SMS: SMSConfig{
			BaseURL:  getEnv("SMS_API_URL", "https://api.africastalking.com/version1/messaging"),
			Username: getEnv("SMS_USERNAME", "sandbox"),
			APIKey:   getEnv("SMS_API_KEY", ""),
			SenderID: getEnv("SMS_SENDER_ID", ""),
		},
		Lending: LendingConfig{
			Currency:        getEnv("LOAN_CURRENCY", "EUR"),
			MinCreditScore:  getEnvInt("MIN_CREDIT_SCORE", 50),
			MaxExposure:     getEnvDecimal("MAX_EXPOSURE", decimal.NewFromInt(5000)),
			ReminderWindow:  getEnvDuration("REMINDER_WINDOW", 24*time.Hour),
			AccrualSchedule: getEnv("ACCRUAL_SCHEDULE", "0 2 * * *"),
		},
	}
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}
