package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Analysis bounds and defaults.
	DefaultYears      int
	MinYears          int
	MaxYears          int
	DefaultWindowDays int

	// Result cache configuration.
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheSize    int

	// Synthetic source configuration. A non-zero seed makes demo output
	// deterministic per request.
	SyntheticSeed uint64

	// NASA POWER configuration. When enabled, real observations replace
	// the synthetic source.
	PowerEnabled bool
	PowerBaseURL string
	PowerTimeout time.Duration

	// Kafka report publishing configuration.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDurationEnv("CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	powerTimeout, err := parseDurationEnv("POWER_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	defaultYears, err := parseIntEnv("YEARS_DEFAULT", 20)
	if err != nil {
		return nil, err
	}
	minYears, err := parseIntEnv("YEARS_MIN", 10)
	if err != nil {
		return nil, err
	}
	maxYears, err := parseIntEnv("YEARS_MAX", 30)
	if err != nil {
		return nil, err
	}
	windowDays, err := parseIntEnv("DATE_WINDOW_DAYS", 7)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseIntEnv("CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	seed, err := parseUintEnv("SYNTHETIC_SEED", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DefaultYears:      defaultYears,
		MinYears:          minYears,
		MaxYears:          maxYears,
		DefaultWindowDays: windowDays,

		CacheEnabled: parseBoolEnv("CACHE_ENABLED", true),
		CacheTTL:     cacheTTL,
		CacheSize:    cacheSize,

		SyntheticSeed: seed,

		PowerEnabled: parseBoolEnv("POWER_ENABLED", false),
		PowerBaseURL: envOrDefault("POWER_BASE_URL", ""),
		PowerTimeout: powerTimeout,

		KafkaEnabled: parseBoolEnv("KAFKA_ENABLED", false),
		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "weather-analysis-reports"),
	}

	if cfg.MinYears < 1 {
		return nil, errors.New("YEARS_MIN must be at least 1")
	}
	if cfg.MaxYears < cfg.MinYears {
		return nil, errors.New("YEARS_MAX must not be below YEARS_MIN")
	}
	if cfg.DefaultYears < cfg.MinYears || cfg.DefaultYears > cfg.MaxYears {
		return nil, errors.New("YEARS_DEFAULT must fall within YEARS_MIN..YEARS_MAX")
	}
	if cfg.DefaultWindowDays < 0 {
		return nil, errors.New("DATE_WINDOW_DAYS must not be negative")
	}
	if cfg.CacheEnabled && cfg.CacheSize <= 0 {
		return nil, errors.New("CACHE_SIZE must be positive when the cache is enabled")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseUintEnv(key string, fallback uint64) (uint64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return fallback
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
