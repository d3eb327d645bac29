package runtime

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/zeusync/scenebridge/internal/core/observability/metrics"
)

// Config controls a Host and the servers started next to it.
type Config struct {
	LogLevel      string `env:"SCENEBRIDGE_LOG_LEVEL" validate:"oneof=debug info warn error fatal"`
	TickRate      int    `env:"SCENEBRIDGE_TICK_RATE" validate:"gt=0,lte=1000"`
	InspectorAddr string `env:"SCENEBRIDGE_INSPECTOR_ADDR" validate:"omitempty,hostname_port"`
	MetricsAddr   string `env:"SCENEBRIDGE_METRICS_ADDR" validate:"omitempty,hostname_port"`
	Metrics       metrics.Config
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		TickRate: 60,
		Metrics:  metrics.DefaultConfig(),
	}
}

// LoadConfig applies environment overrides on top of DefaultConfig and
// validates the result.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse runtime config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid runtime config: %w", err)
	}
	return nil
}
