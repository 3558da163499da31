package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	Logging     LoggingConfig  `koanf:"logging"`
	NewRelic    NewRelicConfig `koanf:"newrelic"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // console or json; empty picks by environment
}

type NewRelicConfig struct {
	LicenseKey string `koanf:"license_key"`
	AppName    string `koanf:"app_name"`
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		Logging: LoggingConfig{Level: "info"},
	}
}

func (o *ObservabilityConfig) applyDefaults() {
	if o.Logging.Level == "" {
		o.Logging.Level = "info"
	}
}

// NewRelicEnabled reports whether APM should be started.
func (o *ObservabilityConfig) NewRelicEnabled() bool {
	return o.NewRelic.LicenseKey != ""
}

// Validate checks values the struct tags cannot express.
func (o *ObservabilityConfig) Validate() error {
	if _, err := zerolog.ParseLevel(o.Logging.Level); err != nil {
		return fmt.Errorf("logging level %q: %w", o.Logging.Level, err)
	}
	switch o.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging format %q: want console or json", o.Logging.Format)
	}
	if o.NewRelicEnabled() && len(o.NewRelic.LicenseKey) != 40 {
		return fmt.Errorf("newrelic license key must be 40 characters")
	}
	return nil
}

// AppName is the New Relic application name, defaulting to the service name.
func (o *ObservabilityConfig) AppName() string {
	if o.NewRelic.AppName != "" {
		return o.NewRelic.AppName
	}
	return o.ServiceName + "-" + o.Environment
}
