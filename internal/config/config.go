package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

type Config struct {
	Addr                     string
	DBPath                   string
	LogLevel                 string
	StatsWorkerCount         int
	StatsQueueSize           int
	IncorrectRepetitions     int
	AlmostCorrectRepetitions int
	PreviewDelay             int
	MaxSessions              int
	SessionIdleTimeout       time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                     envOr("ADDR", ":8080"),
		DBPath:                   envOr("DB_PATH", "file:vocabflash.db"),
		LogLevel:                 envOr("LOG_LEVEL", "INFO"),
		StatsWorkerCount:         envIntOr("STATS_WORKER_COUNT", 1),
		StatsQueueSize:           envIntOr("STATS_QUEUE_SIZE", 256),
		IncorrectRepetitions:     envIntOr("INCORRECT_REPETITIONS", 2),
		AlmostCorrectRepetitions: envIntOr("ALMOST_CORRECT_REPETITIONS", 1),
		PreviewDelay:             envIntOr("PREVIEW_DELAY", 3),
		MaxSessions:              envIntOr("MAX_SESSIONS", 100),
		SessionIdleTimeout:       envDurationOr("SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if c.StatsWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("STATS_WORKER_COUNT must be at least 1 (got %d)", c.StatsWorkerCount))
	}
	if c.StatsQueueSize < 1 {
		errs = append(errs, fmt.Errorf("STATS_QUEUE_SIZE must be at least 1 (got %d)", c.StatsQueueSize))
	}
	if c.IncorrectRepetitions < 0 {
		errs = append(errs, fmt.Errorf("INCORRECT_REPETITIONS cannot be negative (got %d)", c.IncorrectRepetitions))
	}
	if c.AlmostCorrectRepetitions < 0 {
		errs = append(errs, fmt.Errorf("ALMOST_CORRECT_REPETITIONS cannot be negative (got %d)", c.AlmostCorrectRepetitions))
	}
	if c.PreviewDelay < 0 {
		errs = append(errs, fmt.Errorf("PREVIEW_DELAY cannot be negative (got %d)", c.PreviewDelay))
	}
	if c.MaxSessions < 1 {
		errs = append(errs, fmt.Errorf("MAX_SESSIONS must be at least 1 (got %d)", c.MaxSessions))
	}
	if c.SessionIdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("SESSION_IDLE_TIMEOUT cannot be negative (got %v)", c.SessionIdleTimeout))
	}
	return errors.Join(errs...)
}

// DefaultSettings returns the study settings used until the user saves their own.
func (c Config) DefaultSettings() models.Settings {
	return models.Settings{
		IncorrectRepetitions:     c.IncorrectRepetitions,
		AlmostCorrectRepetitions: c.AlmostCorrectRepetitions,
		PreviewDelay:             c.PreviewDelay,
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
