package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/freelance_market/pkg/config"
)

type ServiceConfig struct {
	config.Config

	BaseURL string

	PaymentProvider      string
	PaymentKeyID         string
	PaymentKeySecret     string
	PaymentWebhookSecret string
	PaymentAPIURL        string
	PaymentCurrency      string
	PaymentTimeout       time.Duration

	ESURL      string
	ESUser     string
	ESPassword string
	ItemsIndex string

	OrderEventsTopic string
	OutboxInterval   time.Duration
	OutboxBatch      int

	NotifyTimeout time.Duration
}

// LoadEnvFile reads an optional .env; real environment variables win.
func LoadEnvFile(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			log.Printf("warning: could not load %s: %v", p, err)
		}
	}
}

// FromEnv reads every setting without enforcing required keys.
func FromEnv() ServiceConfig {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts()
	}

	return ServiceConfig{
		Config: cfg,

		BaseURL: config.EnvDefault("BASE_URL", "http://localhost:8080"),

		PaymentProvider:      config.EnvDefault("PAYMENT_PROVIDER", "razorpay"),
		PaymentKeyID:         os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret:     os.Getenv("PAYMENT_KEY_SECRET"),
		PaymentWebhookSecret: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
		PaymentAPIURL:        os.Getenv("PAYMENT_API_URL"),
		PaymentCurrency:      config.EnvDefault("PAYMENT_CURRENCY", "INR"),
		PaymentTimeout:       config.EnvDurationDefault("PAYMENT_TIMEOUT", 10*time.Second),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ItemsIndex: config.EnvDefault("ITEMS_INDEX", "items"),

		OrderEventsTopic: config.EnvDefault("ORDER_EVENTS_TOPIC", "order_events"),
		OutboxInterval:   config.EnvDurationDefault("OUTBOX_INTERVAL", 2*time.Second),
		OutboxBatch:      config.EnvIntDefault("OUTBOX_BATCH", 100),

		NotifyTimeout: config.EnvDurationDefault("NOTIFY_TIMEOUT", 3*time.Second),
	}
}

// Load is used by the API server. A missing webhook secret is allowed here:
// the receiver then rejects every delivery.
func Load() ServiceConfig {
	cfg := FromEnv()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	config.MustOneOf(cfg.PaymentProvider, "PAYMENT_PROVIDER", "razorpay", "stripe")
	config.MustNonEmpty(cfg.PaymentKeySecret, "PAYMENT_KEY_SECRET")

	return cfg
}

func dsnFromParts() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host,
		config.EnvDefault("DB_PORT", "5432"), os.Getenv("DB_NAME"),
	)
}
