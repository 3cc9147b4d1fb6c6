package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	MongoURI             string
	MongoDatabase        string
	RedisAddr            string
	RabbitURL            string
	StripeAPIKey         string
	StripeWebhookSecret  string
	OpenAIAPIKey         string
	JWTSecret            string
	FrontendURL          string
	AllocatorMaxAttempts int
	WebhookDedupeTTL     time.Duration
	OTLPEndpoint         string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	maxAttempts, _ := strconv.Atoi(os.Getenv("ALLOCATOR_MAX_ATTEMPTS"))
	if maxAttempts == 0 {
		maxAttempts = 25
	}

	dedupeTTL, _ := time.ParseDuration(os.Getenv("WEBHOOK_DEDUPE_TTL"))
	if dedupeTTL == 0 {
		dedupeTTL = 24 * time.Hour
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	db := os.Getenv("MONGO_DATABASE")
	if db == "" {
		db = "hbp"
	}

	return &Config{
		HTTPAddr:             addr,
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDatabase:        db,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RabbitURL:            os.Getenv("RABBIT_URL"),
		StripeAPIKey:         os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		FrontendURL:          os.Getenv("CORS_ORIGIN"),
		AllocatorMaxAttempts: maxAttempts,
		WebhookDedupeTTL:     dedupeTTL,
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}
