package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Ingestion settings.
	ParseConcurrency int
	ContinueOnError  bool
	MaxUploadBytes   int64

	// SQLite sink; empty path disables it.
	SQLitePath string

	// Kafka sink configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaBatchSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	concurrency, err := parsePositiveInt("PARSE_CONCURRENCY", runtime.GOMAXPROCS(0))
	if err != nil {
		return nil, err
	}

	kafkaBatch, err := parsePositiveInt("KAFKA_BATCH_SIZE", 500)
	if err != nil {
		return nil, err
	}

	maxUpload, err := parsePositiveInt("MAX_UPLOAD_BYTES", 8<<20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		ParseConcurrency: concurrency,
		ContinueOnError:  os.Getenv("CONTINUE_ON_ERROR") == "true",
		MaxUploadBytes:   int64(maxUpload),
		SQLitePath:       os.Getenv("SQLITE_PATH"),
		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:       sharedcfg.EnvOrDefault("KAFKA_TOPIC", "geomag-xyz-hourly"),
		KafkaBatchSize:   kafkaBatch,
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
