package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// clearEnv unsets every variable LoadConfig might read for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, envPrefix) || key == "PORT" {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Errorf("expected default port 3000, got %q", cfg.Server.Port)
	}
	if cfg.Primary.Env != "development" {
		t.Errorf("expected env development, got %q", cfg.Primary.Env)
	}
	if cfg.Logs.Dir != "logs" {
		t.Errorf("expected logs dir 'logs', got %q", cfg.Logs.Dir)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory store, got %q", cfg.Store.Driver)
	}
	if !reflect.DeepEqual(cfg.Server.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("expected CORS [*], got %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Observability == nil || cfg.Observability.Logging.Level != "info" {
		t.Fatalf("expected default observability config, got %+v", cfg.Observability)
	}
	if cfg.Observability.ServiceName != "protokoll" || cfg.Observability.Environment != "development" {
		t.Errorf("unexpected observability identity: %+v", cfg.Observability)
	}
	if cfg.O3Enabled() {
		t.Error("expected O3 disabled by default")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROTOKOLL_PRIMARY_ENV", "production")
	t.Setenv("PROTOKOLL_SERVER_PORT", "8080")
	t.Setenv("PROTOKOLL_SERVER_READ_TIMEOUT", "15")
	t.Setenv("PROTOKOLL_SERVER_CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("PROTOKOLL_LOGS_DIR", "/var/lib/protokoll")
	t.Setenv("PROTOKOLL_OBSERVABILITY_LOGGING_LEVEL", "debug")
	t.Setenv("PROTOKOLL_STORAGE_O3_ENDPOINT", "http://o3.test")
	t.Setenv("PROTOKOLL_STORAGE_O3_BUCKET", "archive")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Server.ReadTimeout != 15 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if !reflect.DeepEqual(cfg.Server.CORSAllowedOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Errorf("unexpected CORS origins: %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Logs.Dir != "/var/lib/protokoll" {
		t.Errorf("unexpected logs dir: %q", cfg.Logs.Dir)
	}
	if cfg.Observability.Logging.Level != "debug" || cfg.Observability.Environment != "production" {
		t.Errorf("unexpected observability: %+v", cfg.Observability)
	}
	if !cfg.O3Enabled() || cfg.Storage.O3.Bucket != "archive" {
		t.Errorf("expected O3 configured, got %+v", cfg.Storage.O3)
	}
}

func TestLoadConfigPortOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROTOKOLL_SERVER_PORT", "8080")
	t.Setenv("PORT", "4000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "4000" {
		t.Errorf("expected PORT to win, got %q", cfg.Server.Port)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PROTOKOLL_LOGS_DIR=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("PROTOKOLL_LOGS_DIR") })

	cfg, err := LoadConfig(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logs.Dir != "from-dotenv" {
		t.Errorf("expected logs dir from .env, got %q", cfg.Logs.Dir)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown store driver", env: map[string]string{"PROTOKOLL_STORE_DRIVER": "redis"}},
		{name: "postgres without url", env: map[string]string{"PROTOKOLL_STORE_DRIVER": "postgres"}},
		{name: "non numeric port", env: map[string]string{"PORT": "http"}},
		{name: "bad log level", env: map[string]string{"PROTOKOLL_OBSERVABILITY_LOGGING_LEVEL": "loud"}},
		{name: "bad log format", env: map[string]string{"PROTOKOLL_OBSERVABILITY_LOGGING_FORMAT": "xml"}},
		{name: "short license key", env: map[string]string{"PROTOKOLL_OBSERVABILITY_NEWRELIC_LICENSE_KEY": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"PROTOKOLL_SERVER_PORT":                        "server.port",
		"PROTOKOLL_SERVER_CORS_ALLOWED_ORIGINS":        "server.cors_allowed_origins",
		"PROTOKOLL_STORE_DATABASE_URL":                 "store.database_url",
		"PROTOKOLL_STORAGE_O3_ACCESS_KEY":              "storage.o3.access_key",
		"PROTOKOLL_OBSERVABILITY_NEWRELIC_LICENSE_KEY": "observability.newrelic.license_key",
		"PROTOKOLL_UNKNOWN":                            "unknown",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
