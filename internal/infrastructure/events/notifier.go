package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"
	"github.com/go-redis/redis/v8"
	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

// NoopNotifier is used when no downstream recomputation is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyBatchImported(ctx context.Context, event domain.BatchImported) error {
	log.Printf("batch %s imported (%d records); no recompute notifier configured", event.BatchID, event.TotalRecords)
	return nil
}

type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaNotifier(producer sarama.SyncProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// NewSyncProducer waits for all in-sync replicas so a notification is not
// acknowledged before it is durable.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	return sarama.NewSyncProducer(brokers, cfg)
}

func (n *KafkaNotifier) NotifyBatchImported(ctx context.Context, event domain.BatchImported) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode batch event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(event.BatchID),
		Value: sarama.ByteEncoder(payload),
	}
	partition, offset, err := n.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish batch event to %s: %w", n.topic, err)
	}
	log.Printf("batch %s published to %s (partition %d, offset %d)", event.BatchID, n.topic, partition, offset)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) NotifyBatchImported(ctx context.Context, event domain.BatchImported) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode batch event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish batch event to %s: %w", n.channel, err)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
