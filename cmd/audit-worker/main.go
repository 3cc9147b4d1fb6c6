package main

import (
	"context"
	"encoding/json"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/horizone/hotel-bookings-and-payments/internal/adapters/mongo"
	"github.com/horizone/hotel-bookings-and-payments/internal/adapters/rabbit"
	"github.com/horizone/hotel-bookings-and-payments/internal/config"
	"github.com/horizone/hotel-bookings-and-payments/internal/observability"
	amqp "github.com/rabbitmq/amqp091-go"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const auditQueue = "audit.q"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger()

	mongoClient, err := mongodriver.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	audit := mongo.NewAuditLogger(mongoClient.Database(cfg.MongoDatabase), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, auditQueue, "booking.*")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	worker := NewAuditWorker(consumer, audit, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("audit worker stopped", err)
	}
	logger.Info("Shutdown audit worker")
}

type AuditWorker struct {
	consumer *rabbit.Consumer
	audit    *mongo.AuditLogger
	logger   observability.Logger
}

func NewAuditWorker(consumer *rabbit.Consumer, audit *mongo.AuditLogger, logger observability.Logger) *AuditWorker {
	return &AuditWorker{consumer: consumer, audit: audit, logger: logger}
}

func (w *AuditWorker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Consume(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := w.processWithRetry(ctx, d); err != nil {
				w.logger.WithField("routing_key", d.RoutingKey).Error("failed to record event after retries", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

func (w *AuditWorker) processWithRetry(ctx context.Context, d amqp.Delivery) error {
	var data map[string]interface{}
	if err := json.Unmarshal(d.Body, &data); err != nil {
		// Malformed events are recorded raw rather than requeued forever.
		data = map[string]interface{}{"raw": string(d.Body)}
	}

	maxRetries := 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lastErr = w.audit.LogEvent(ctx, d.RoutingKey, data)
		if lastErr == nil {
			return nil
		}
		backoff := time.Duration(1<<i) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return lastErr
}
