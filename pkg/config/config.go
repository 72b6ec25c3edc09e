package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Extraction    ExtractionConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
}

type ExtractionConfig struct {
	// AmountPolicy selects how units-only amounts are resolved: "simple" or "heuristic".
	AmountPolicy       string
	Workers            int
	ContextWindow      int
	SampleRows         int
	TablePaymentMethod string
	TextPaymentMethod  string
	Currency           string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// ErrAmountPolicyRequired is returned when AMOUNT_POLICY is unset.
var ErrAmountPolicyRequired = errors.New("AMOUNT_POLICY is required (simple or heuristic)")

// Load reads configuration from environment variables, after loading a .env
// file from the working directory when one exists, and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that override values before
// calling Validate themselves.
func Read() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return readEnv(), nil
}

// FromEnv reads and validates configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := readEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readEnv() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			AmountPolicy:       strings.ToLower(getEnv("AMOUNT_POLICY", "")),
			Workers:            getEnvAsInt("EXTRACT_WORKERS", 1),
			ContextWindow:      getEnvAsInt("EXTRACT_CONTEXT_WINDOW", 100),
			SampleRows:         getEnvAsInt("EXTRACT_SAMPLE_ROWS", 5),
			TablePaymentMethod: getEnv("TABLE_PAYMENT_METHOD", "UPI"),
			TextPaymentMethod:  getEnv("TEXT_PAYMENT_METHOD", "PhonePe"),
			Currency:           getEnv("STATEMENT_CURRENCY", "INR"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
		},
	}
}

// Validate checks values that have no safe default.
func (c *Config) Validate() error {
	switch c.Extraction.AmountPolicy {
	case "":
		return ErrAmountPolicyRequired
	case "simple", "heuristic":
	default:
		return fmt.Errorf("AMOUNT_POLICY %q: must be simple or heuristic", c.Extraction.AmountPolicy)
	}

	if c.Extraction.Workers < 1 {
		return errors.New("EXTRACT_WORKERS must be at least 1")
	}
	if c.Extraction.ContextWindow < 1 {
		return errors.New("EXTRACT_CONTEXT_WINDOW must be at least 1")
	}
	if c.Extraction.SampleRows < 1 {
		return errors.New("EXTRACT_SAMPLE_ROWS must be at least 1")
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT %q: must be json or text", c.Logging.Format)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
