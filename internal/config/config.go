package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	LedgerPath       string `env:"LEDGER_PATH" envDefault:"model_performance/model_performance_log.csv"`
	LedgerDSN        string `env:"LEDGER_DSN" envDefault:""` // optional Postgres mirror
	PredictionsDir   string `env:"PREDICTIONS_DIR" envDefault:"model_output"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout   int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec   int    `env:"REQUESTS_PER_SEC" envDefault:"5"`
	MaxRetries       int    `env:"MAX_RETRIES" envDefault:"3"`
	MaxRetryTimeout  int    `env:"MAX_RETRY_TIMEOUT" envDefault:"30"` // seconds
	CloseGameMargin  int    `env:"CLOSE_GAME_MARGIN" envDefault:"3"`
	HighScoringTotal int    `env:"HIGH_SCORING_TOTAL" envDefault:"260"`
	PushPolicy       string `env:"PUSH_POLICY" envDefault:"incorrect"`
}

// Load initializes configuration from environment variables.
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.LedgerPath = getEnvWithDefault("LEDGER_PATH", "model_performance/model_performance_log.csv")
	cfg.LedgerDSN = os.Getenv("LEDGER_DSN")
	cfg.PredictionsDir = getEnvWithDefault("PREDICTIONS_DIR", "model_output")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 3)
	cfg.MaxRetryTimeout = getEnvIntWithDefault("MAX_RETRY_TIMEOUT", 30)
	cfg.CloseGameMargin = getEnvIntWithDefault("CLOSE_GAME_MARGIN", 3)
	cfg.HighScoringTotal = getEnvIntWithDefault("HIGH_SCORING_TOTAL", 260)
	cfg.PushPolicy = getEnvWithDefault("PUSH_POLICY", "incorrect")

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
