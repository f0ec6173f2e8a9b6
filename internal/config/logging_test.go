package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := (LogConfig{Level: tt.level}).SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := LogConfig{Level: "info", Format: "json"}.NewLogger(&buf)
		logger.Info("hello", "k", "v")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("output is not JSON: %q", buf.String())
		}
		if entry["msg"] != "hello" || entry["k"] != "v" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("text filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := LogConfig{Level: "warn", Format: "text"}.NewLogger(&buf)
		logger.Info("dropped")
		logger.Warn("kept")

		out := buf.String()
		if strings.Contains(out, "dropped") {
			t.Errorf("info line written at warn level: %q", out)
		}
		if !strings.Contains(out, "msg=kept") {
			t.Errorf("warn line missing: %q", out)
		}
		if logger.Enabled(context.Background(), slog.LevelDebug) {
			t.Error("debug enabled at warn level")
		}
	})
}
