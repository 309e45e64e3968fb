package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/severity-calendar/internal/domain"
)

// Document store backends.
const (
	BackendFS   = "fs"
	BackendHTTP = "http"
	BackendS3   = "s3"
)

// Document cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheValkey = "valkey"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Where sources.json and the city datasets are read from.
	DataBackend  string
	DataDir      string
	DataBaseURL  string
	FetchTimeout time.Duration

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3Prefix    string

	CacheBackend string
	CacheSize    int
	CacheTTL     time.Duration
	ValkeyAddr   string

	// Presentation.
	WeekStart domain.WeekStart
	Locale    string
	Timezone  *time.Location

	// Day value export.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored but never
// overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	weekStart, err := domain.ParseWeekStart(sharedcfg.EnvOrDefault("WEEK_START", "monday"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEK_START: %w", err)
	}

	tz, err := time.LoadLocation(sharedcfg.EnvOrDefault("TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataBackend:  strings.ToLower(sharedcfg.EnvOrDefault("DATA_BACKEND", BackendFS)),
		DataDir:      sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		DataBaseURL:  os.Getenv("DATA_BASE_URL"),
		FetchTimeout: fetchTimeout,

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Prefix:    os.Getenv("S3_PREFIX"),

		CacheBackend: strings.ToLower(sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheMemory)),
		CacheSize:    cacheSize,
		CacheTTL:     cacheTTL,
		ValkeyAddr:   os.Getenv("VALKEY_ADDR"),

		WeekStart: weekStart,
		Locale:    strings.ToLower(sharedcfg.EnvOrDefault("LOCALE", domain.DefaultLocale)),
		Timezone:  tz,

		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "severity-day-values"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataBackend {
	case BackendFS:
		if c.DataDir == "" {
			return errors.New("DATA_DIR is required for the fs backend")
		}
	case BackendHTTP:
		if c.DataBaseURL == "" {
			return errors.New("DATA_BASE_URL is required for the http backend")
		}
	case BackendS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return errors.New("S3_ENDPOINT and S3_BUCKET are required for the s3 backend")
		}
	default:
		return fmt.Errorf("invalid DATA_BACKEND %q", c.DataBackend)
	}

	switch c.CacheBackend {
	case CacheNone, CacheMemory:
	case CacheValkey:
		if c.ValkeyAddr == "" {
			return errors.New("CACHE_BACKEND is valkey but VALKEY_ADDR is not set")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q", c.CacheBackend)
	}

	if c.Locale != domain.LocaleRussian && c.Locale != domain.LocaleEnglish {
		return fmt.Errorf("invalid LOCALE %q", c.Locale)
	}
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	return nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
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
