package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// RedisURL enables the Redis session store; empty selects the
	// in-memory store.
	RedisURL string

	// DataDir is where scenario catalog files live.
	DataDir string

	// SessionTTL is how long a stored session survives without activity.
	SessionTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", ""),
		DataDir:     getEnv("DATA_DIR", "./data/scenarios"),
		SessionTTL:  parseHours(getEnv("SESSION_TTL_HOURS", "72")),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseHours(s string) time.Duration {
	h, err := strconv.Atoi(s)
	if err != nil || h <= 0 {
		h = 72
	}
	return time.Duration(h) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
