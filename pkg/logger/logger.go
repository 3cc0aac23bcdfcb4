package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the log output format and minimum level.
type Config struct {
	// Format is "text" or "json". Anything else falls back to json.
	Format string `yaml:"format"`
	// Level is "debug", "info", "warn" or "error". Default info.
	Level string `yaml:"level"`
}

// New creates a logger per cfg, writing to stdout, with optional context
// extractors.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter is New with an explicit destination. Used in tests.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(NewContextHandler(h, extractors...))
}

// NewNope returns a logger that discards all records.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
