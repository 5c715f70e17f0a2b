package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	domain "github.com/mohammadpnp/sheet-import/internal/domain/ingest"
)

const (
	NotifierNone  = "none"
	NotifierKafka = "kafka"
	NotifierRedis = "redis"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	DatabaseURL     string
	Port            string
	UploadDir       string
	UploadBodyLimit string
	RowPolicy       domain.RowPolicy
	AutoMigrate     bool
	MaxSheetRows    int

	RecomputeNotifier string
	Kafka             KafkaConfig
	Redis             RedisConfig
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Load reads the optional env file named by ENV_FILE (default .env) and
// then the process environment.
func Load() (Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := LoadDotEnv(envFile); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		Port:            getEnv("PORT", "8080"),
		UploadDir:       getEnv("UPLOAD_DIR", os.TempDir()),
		UploadBodyLimit: getEnv("UPLOAD_BODY_LIMIT", "50M"),
		AutoMigrate:     parseBoolEnv("AUTO_MIGRATE", false),
		MaxSheetRows:    parseIntEnv("MAX_SHEET_ROWS", 0),

		RecomputeNotifier: strings.ToLower(getEnv("RECOMPUTE_NOTIFIER", NotifierNone)),
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_RECOMPUTE_TOPIC", "import-batches"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       parseIntEnv("REDIS_DB", 0),
			Channel:  getEnv("REDIS_RECOMPUTE_CHANNEL", "import-batches"),
		},
	}
	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	policyName := getEnv("ROW_POLICY", domain.StrictPolicy.Name)
	policy, ok := domain.PolicyByName(policyName)
	if !ok {
		log.Printf("unknown ROW_POLICY %q, using %s", policyName, policy.Name)
	}
	cfg.RowPolicy = policy

	switch cfg.RecomputeNotifier {
	case NotifierNone, NotifierKafka, NotifierRedis:
	default:
		return Config{}, fmt.Errorf("unknown RECOMPUTE_NOTIFIER %q", cfg.RecomputeNotifier)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseBoolEnv(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
