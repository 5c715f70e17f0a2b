package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mohammadpnp/sheet-import/internal/bootstrap"
	"github.com/mohammadpnp/sheet-import/internal/config"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/db"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/events"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	notifier, closeNotifier := newNotifier(cfg)
	defer func() {
		if err := closeNotifier.Close(); err != nil {
			log.Printf("failed to close recompute notifier: %v", err)
		}
	}()

	server := bootstrap.NewHTTPServer(cfg, gdb, pool, notifier)

	go func() {
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newNotifier(cfg config.Config) (domain.RecomputeNotifier, io.Closer) {
	switch cfg.RecomputeNotifier {
	case config.NotifierKafka:
		producer, err := events.NewSyncProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.Fatalf("failed to create kafka producer: %v", err)
		}
		notifier := events.NewKafkaNotifier(producer, cfg.Kafka.Topic)
		return notifier, notifier
	case config.NotifierRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		notifier := events.NewRedisNotifier(client, cfg.Redis.Channel)
		return notifier, notifier
	default:
		return events.NoopNotifier{}, nopCloser{}
	}
}
