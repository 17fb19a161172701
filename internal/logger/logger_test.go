package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "console", Output: &buf})

	l.With("model", "ionocraft").WithGroup("run").Info("rollout finished", "steps", 10)
	l.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "INFO  rollout finished") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "model=ionocraft") {
		t.Errorf("missing pre-attached attr in %q", out)
	}
	if !strings.Contains(out, "run.steps=10") {
		t.Errorf("missing grouped attr in %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Output: &buf})
	l.Debug("step", "n", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec["msg"] != "step" {
		t.Errorf("msg = %v, want step", rec["msg"])
	}
}

func TestInitReplacesDefault(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Config{Level: "warn", Format: "text", Output: &buf})
	if L() != l {
		t.Error("L() should return the logger installed by Init")
	}
	L().Warn("careful")
	if !strings.Contains(buf.String(), "careful") {
		t.Errorf("expected warning in output, got %q", buf.String())
	}
}
