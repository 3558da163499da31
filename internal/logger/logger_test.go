package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/akave-ai/protokoll/internal/config"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	obs := &config.ObservabilityConfig{
		ServiceName: "protokoll",
		Environment: "production",
		Logging:     config.LoggingConfig{Level: "warn"},
	}
	l := NewWithWriter(obs, &buf)

	l.Info().Msg("dropped")
	l.Warn().Msg("kept")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "kept" || line["level"] != "warn" {
		t.Errorf("unexpected line: %v", line)
	}
	if line["service"] != "protokoll" || line["env"] != "production" {
		t.Errorf("missing service fields: %v", line)
	}
}

func TestForLevel(t *testing.T) {
	var buf bytes.Buffer
	obs := &config.ObservabilityConfig{Environment: "test", Logging: config.LoggingConfig{Level: "debug", Format: "json"}}
	l := NewWithWriter(obs, &buf)

	tests := map[string]string{
		"error":   "error",
		"warn":    "warn",
		"warning": "warn",
		"debug":   "debug",
		"info":    "info",
		"custom":  "info",
	}
	for in, want := range tests {
		buf.Reset()
		ForLevel(l, in).Msg("x")
		var line map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if line["level"] != want {
			t.Errorf("ForLevel(%q) logged at %v, want %s", in, line["level"], want)
		}
	}
}
