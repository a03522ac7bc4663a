package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TO"

// Load reads an optional .env file, processes environment variables, validates
// the result and ensures required directories exist.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", cfg.DownloadDir, err)
	}
	slog.Debug("directory created or verified", "path", cfg.DownloadDir)

	return &cfg, nil
}

// NewLogger builds a slog logger writing to w.
// Supports "json" or "text" formats and log levels: debug, info, warn, error.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("env", cfg.Environment)
}

// SetupLogger configures the global slog logger based on configuration.
func SetupLogger(cfg *Config) *slog.Logger {
	logger := NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)
	return logger
}
