package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PROTOKOLL_"

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Logs          LogsConfig           `koanf:"logs" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	Storage       StorageConfig        `koanf:"storage"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development production test"`
}

type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"gte=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// LogsConfig locates the daily protokoll files.
type LogsConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

type StoreConfig struct {
	Driver      string `koanf:"driver" validate:"required,oneof=memory postgres"`
	DatabaseURL string `koanf:"database_url" validate:"required_if=Driver postgres"`
	MaxConns    int32  `koanf:"max_conns" validate:"gte=0"`
}

type StorageConfig struct {
	O3 *O3Config `koanf:"o3"`
}

// O3Config points at an S3-compatible bucket used by the archive command.
type O3Config struct {
	Endpoint  string `koanf:"endpoint"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Prefix    string `koanf:"prefix"`
}

var defaults = map[string]any{
	"primary.env":                 "development",
	"server.port":                 "3000",
	"server.read_timeout":         0,
	"server.write_timeout":        0,
	"server.idle_timeout":         0,
	"server.cors_allowed_origins": []string{"*"},
	"logs.dir":                    "logs",
	"store.driver":                "memory",
	"store.max_conns":             4,
}

// sections maps the first segments of an env key to their koanf path.
// Longer prefixes come first so storage_o3 wins over a bare section.
var sections = []string{"storage_o3", "primary", "server", "logs", "store", "observability_logging", "observability_newrelic", "observability"}

// envKey turns PROTOKOLL_SERVER_READ_TIMEOUT into server.read_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, sec := range sections {
		if strings.HasPrefix(key, sec+"_") {
			return strings.ReplaceAll(sec, "_", ".") + "." + strings.TrimPrefix(key, sec+"_")
		}
	}
	return key
}

// LoadConfig loads the configuration from defaults, optional .env files and
// environment variables using koanf. The plain PORT variable overrides
// server.port.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = envKey(key)
		if strings.HasSuffix(key, "cors_allowed_origins") {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		if err := k.Set("server.port", port); err != nil {
			return nil, err
		}
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Observability is a pointer so an unset section can be told apart from
	// a zero one.
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}
	mainConfig.Observability.applyDefaults()
	mainConfig.Observability.ServiceName = "protokoll"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// O3Enabled reports whether an archive bucket is configured.
func (c *Config) O3Enabled() bool {
	o3 := c.Storage.O3
	return o3 != nil && o3.Endpoint != "" && o3.Bucket != ""
}

// ErrO3NotConfigured is returned by commands that need object storage.
var ErrO3NotConfigured = errors.New("o3 storage not configured: set PROTOKOLL_STORAGE_O3_ENDPOINT and PROTOKOLL_STORAGE_O3_BUCKET")

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
