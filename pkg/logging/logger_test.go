package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input LogLevel
		want  zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{LogLevel("warning"), zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{LogLevel("DEBUG"), zerolog.DebugLevel},
		{LogLevel("bogus"), zerolog.InfoLevel},
		{LogLevel(""), zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelInfo,
		Output: &buf,
	})

	logger.Info().Str("page", "1").Msg("fetched page")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if event["message"] != "fetched page" {
		t.Errorf("message = %v, want %q", event["message"], "fetched page")
	}
	if event["page"] != "1" {
		t.Errorf("page field = %v, want %q", event["page"], "1")
	}
	if _, ok := event["time"]; !ok {
		t.Error("timestamp field missing")
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelWarn,
		Output: &buf,
	})

	logger.Debug().Msg("hidden debug")
	logger.Info().Msg("hidden info")
	logger.Warn().Msg("visible warn")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains suppressed messages: %q", out)
	}
	if !strings.Contains(out, "visible warn") {
		t.Errorf("output missing warn message: %q", out)
	}
}

func TestSetup_PrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Config{
		Level:  LevelInfo,
		Pretty: true,
		Output: &buf,
	})

	logger.Info().Msg("console line")

	out := buf.String()
	// Console output is human-readable, not JSON.
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("pretty output looks like JSON: %q", out)
	}
	if !strings.Contains(out, "console line") {
		t.Errorf("output missing message: %q", out)
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: LevelInfo, Output: &buf})

	logger := NewLogger("sonarr-client")
	logger.Info().Msg("hello")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if event["component"] != "sonarr-client" {
		t.Errorf("component = %v, want %q", event["component"], "sonarr-client")
	}
}
