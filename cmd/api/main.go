package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/horizone/hotel-bookings-and-payments/internal/adapters/mongo"
	openaiadapter "github.com/horizone/hotel-bookings-and-payments/internal/adapters/openai"
	"github.com/horizone/hotel-bookings-and-payments/internal/adapters/rabbit"
	redisadapter "github.com/horizone/hotel-bookings-and-payments/internal/adapters/redis"
	stripeadapter "github.com/horizone/hotel-bookings-and-payments/internal/adapters/stripe"
	"github.com/horizone/hotel-bookings-and-payments/internal/allocator"
	"github.com/horizone/hotel-bookings-and-payments/internal/config"
	httphandler "github.com/horizone/hotel-bookings-and-payments/internal/http"
	"github.com/horizone/hotel-bookings-and-payments/internal/idempotency"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	"github.com/horizone/hotel-bookings-and-payments/internal/payments"
	"github.com/horizone/hotel-bookings-and-payments/internal/rateLimit"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()

	mongoClient, err := mongodriver.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	db := mongoClient.Database(cfg.MongoDatabase)

	bookings := mongo.NewBookingRepository(db, logger)
	if err := bookings.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("failed to ensure booking indexes: %v", err)
	}
	hotels := mongo.NewHotelRepository(db, logger)
	locations := mongo.NewLocationRepository(db, logger)
	reviews := mongo.NewReviewRepository(db, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	redisCache := redisadapter.NewCache(redisClient)
	redisIdemp := redisadapter.NewIdempotency(redisClient)
	idemp := idempotency.NewIdempotency(redisIdemp, cfg.WebhookDedupeTTL)
	rl := rateLimit.NewRateLimiter(redisCache)

	rabbitConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer rabbitConn.Close()
	rabbitPub, err := rabbit.NewPublisher(rabbitConn)
	if err != nil {
		log.Fatalf("failed to create publisher: %v", err)
	}

	gateway := stripeadapter.NewGateway(cfg.StripeAPIKey, cfg.StripeWebhookSecret, cfg.FrontendURL, logger)
	ai := openaiadapter.NewClient(cfg.OpenAIAPIKey, logger)

	alloc := allocator.New(bookings, rabbitPub, cfg.AllocatorMaxAttempts, logger)
	paySvc := payments.NewService(gateway, bookings, hotels, rabbitPub, idemp, logger)

	handlers := httphandler.NewHandlers(cfg, bookings, hotels, locations, reviews, alloc, paySvc, ai, ai, gateway, logger)

	r := httphandler.SetupRouter(handlers, logger, rl, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}
