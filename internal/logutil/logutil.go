package logutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ytget/yt-downloader-bot/internal/config"
)

// Config describes how the process logger is built
type Config struct {
	Level     string
	Format    string
	AddSource bool
}

// FromSettings reads the logging.* keys
func FromSettings(s *config.Settings) Config {
	return Config{
		Level:     s.GetLogLevel(),
		Format:    s.GetLogFormat(),
		AddSource: s.GetLogAddSource(),
	}
}

// LoggerFromSettings builds a stderr logger from settings
func LoggerFromSettings(s *config.Settings) (*slog.Logger, error) {
	return New(FromSettings(s), os.Stderr)
}

// New builds a logger writing to w
func New(cfg Config, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown logging.format: %s", cfg.Format)
	}

	return slog.New(h), nil
}

// ParseLevel maps a level name onto slog.Level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown logging.level: %s", s)
	}
}
