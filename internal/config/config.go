// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sample source backends.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Missing-data policies applied when a sample table is unavailable.
const (
	// PolicyDefault substitutes the documented neutral value for the
	// missing dataset and flags the substitution in the report.
	PolicyDefault = "default"
	// PolicyFail rejects the request when any dataset is unavailable.
	PolicyFail = "fail"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	SampleSource  string // "csv" or "postgres"
	SampleDataDir string
	PostgresDSN   string

	MissingDataPolicy string // "default" or "fail"
	BaseRate          float64

	// Optional report publishing to Kafka.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	baseRate, err := parseBaseRate()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SampleSource:  envOrDefault("SAMPLE_SOURCE", SourceCSV),
		SampleDataDir: envOrDefault("SAMPLE_DATA_DIR", "./data"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),

		MissingDataPolicy: envOrDefault("MISSING_DATA_POLICY", PolicyDefault),
		BaseRate:          baseRate,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "parcel-risk-reports"),
	}

	switch cfg.SampleSource {
	case SourceCSV:
		if cfg.SampleDataDir == "" {
			return nil, errors.New("SAMPLE_DATA_DIR is required when SAMPLE_SOURCE is csv")
		}
	case SourcePostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("POSTGRES_DSN is required when SAMPLE_SOURCE is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid SAMPLE_SOURCE %q", cfg.SampleSource)
	}

	if cfg.MissingDataPolicy != PolicyDefault && cfg.MissingDataPolicy != PolicyFail {
		return nil, fmt.Errorf("invalid MISSING_DATA_POLICY %q", cfg.MissingDataPolicy)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseBaseRate() (float64, error) {
	s := os.Getenv("BASE_RATE")
	if s == "" {
		return 100, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid BASE_RATE %q", s)
	}
	return v, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
