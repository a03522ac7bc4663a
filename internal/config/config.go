package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	HTTPPort    int           `envconfig:"HTTP_PORT" default:"8080" validate:"min=1,max=65535"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s" validate:"gt=0"`

	WorkerPoolSize    int           `envconfig:"WORKER_POOL_SIZE" default:"5" validate:"min=1"`
	MaxURLsPerRequest int           `envconfig:"MAX_URLS_PER_REQUEST" default:"10" validate:"min=1"`
	DownloadTimeout   time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"5m" validate:"gt=0"`
	MaxFileSize       int64         `envconfig:"MAX_FILE_SIZE" default:"104857600" validate:"min=1"`
	PreviewInterval   int64         `envconfig:"PREVIEW_INTERVAL" default:"1048576" validate:"min=0"`
	AllowedMIMETypes  []string      `envconfig:"ALLOWED_MIME_TYPES"`
	AllowPrivateHosts bool          `envconfig:"ALLOW_PRIVATE_HOSTS" default:"false"`

	DownloadDir string `envconfig:"DOWNLOAD_DIR" default:"./storage" validate:"required"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`

	RecorderName     string `envconfig:"RECORDER_NAME" default:"pipeline" validate:"required"`
	StrictOrdering   bool   `envconfig:"STRICT_ORDERING" default:"true"`
	MetricsNamespace string `envconfig:"METRICS_NAMESPACE" default:"task_observer" validate:"required"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: %v (rule %q)", fe.Field(), fe.Value(), fe.Tag())
		}
		return err
	}
	return nil
}
