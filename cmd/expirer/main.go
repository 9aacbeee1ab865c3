package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/hudibaba0001/Resturant-sub000/internal/expiry"
	"github.com/hudibaba0001/Resturant-sub000/internal/messaging"
	"github.com/hudibaba0001/Resturant-sub000/internal/orders"
	"github.com/hudibaba0001/Resturant-sub000/internal/telemetry"
)

const serviceVersion = "0.1.0"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "expirer", serviceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ttl := durationEnv(logger, "ORDER_PENDING_TTL", 30*time.Minute)
	interval := durationEnv(logger, "SWEEP_INTERVAL", time.Minute)

	var producer *messaging.Producer
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		producer = messaging.NewProducer(strings.Split(kafkaBrokers, ","), messaging.TopicStatusChanged)
		defer func() { _ = producer.Close() }()
	}

	transitionMetrics, err := telemetry.NewTransitionMetrics()
	if err != nil {
		logger.Error("failed to create transition metrics", "error", err)
		os.Exit(1)
	}

	repo := orders.NewOrderRepository(db)
	audit := orders.NewAuditLog(db)

	var publisher orders.Publisher
	if producer != nil {
		publisher = producer
	}
	transitioner := orders.NewTransitioner(repo, audit, publisher, transitionMetrics, logger)
	sweeper := expiry.NewSweeper(repo, transitioner, ttl, interval, logger)

	logger.Info("starting expirer", "ttl", ttl.String(), "interval", interval.String())
	sweeper.Run(ctx)
	logger.Info("expirer stopped")
}

func durationEnv(logger *slog.Logger, name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Error("invalid duration", "name", name, "value", raw, "error", err)
		os.Exit(1)
	}
	return d
}
