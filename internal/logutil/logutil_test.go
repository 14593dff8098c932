package logutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/ytget/yt-downloader-bot/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{" warning ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	logger.Debug("hello", "chat_id", 42)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" {
		t.Errorf("Expected msg 'hello', got %v", rec["msg"])
	}
}

func TestNewTextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("Expected info record to be filtered, got %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("Expected warn record, got %q", out)
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New(Config{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown format, got nil")
	}
}

func TestFromSettings(t *testing.T) {
	v := viper.New()
	settings := config.NewSettings(v)
	v.Set(config.KeyLogLevel, "debug")
	v.Set(config.KeyLogFormat, "json")
	v.Set(config.KeyLogAddSource, true)

	cfg := FromSettings(settings)
	if cfg.Level != "debug" || cfg.Format != "json" || !cfg.AddSource {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}
