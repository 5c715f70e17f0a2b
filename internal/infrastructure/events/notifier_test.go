package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/go-redis/redis/v8"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
	"github.com/mohammadpnp/sheet-import/internal/infrastructure/events"
)

var sampleEvent = domain.BatchImported{
	BatchID:      "3b0b7a36-0d4e-4a4f-8c53-6d5f0e3a9f11",
	TemplateIDs:  []string{"b5c0a7c2-57d5-4f1e-9d0e-1e9e0b7f6a10"},
	FileNames:    []string{"planta.xlsx"},
	TotalRecords: 42,
}

func TestKafkaNotifierPublishesBatchEvent(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var got domain.BatchImported
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.BatchID != sampleEvent.BatchID || got.TotalRecords != 42 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	notifier := events.NewKafkaNotifier(producer, "recompute")
	if err := notifier.NotifyBatchImported(context.Background(), sampleEvent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := notifier.Close(); err != nil {
		t.Fatalf("close producer: %v", err)
	}
}

func TestKafkaNotifierReturnsSendError(t *testing.T) {
	t.Parallel()

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	notifier := events.NewKafkaNotifier(producer, "recompute")
	err := notifier.NotifyBatchImported(context.Background(), sampleEvent)
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}
	_ = notifier.Close()
}

func TestNoopNotifier(t *testing.T) {
	t.Parallel()

	if err := (events.NoopNotifier{}).NotifyBatchImported(context.Background(), sampleEvent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRedisNotifierPublishIntegration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	sub := client.Subscribe(ctx, "sheet-import-test")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notifier := events.NewRedisNotifier(client, "sheet-import-test")
	defer notifier.Close()
	if err := notifier.NotifyBatchImported(ctx, sampleEvent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	var got domain.BatchImported
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("unexpected payload: %v", err)
	}
	if got.BatchID != sampleEvent.BatchID {
		t.Fatalf("unexpected batch id: %s", got.BatchID)
	}
}
