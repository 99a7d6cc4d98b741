package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type Config struct {
	Level slog.Level
	// Stderr receives human-readable text records; defaults to os.Stderr.
	Stderr io.Writer
	// File, when set, receives a JSON copy of every record.
	File string
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// New builds a logger fanning out to stderr and the optional log file. The
// returned close function releases the file and is safe to call when no file
// was opened.
func New(c Config) (*slog.Logger, func() error, error) {
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: c.Level}),
	}

	closeFn := func() error { return nil }
	if c.File != "" {
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:     c.Level,
			AddSource: c.Level <= slog.LevelDebug,
		}))
		closeFn = f.Close
	}

	logger := slog.New(slogmulti.Fanout(handlers...)).With("app", "saferpay2openapi")
	return logger, closeFn, nil
}
