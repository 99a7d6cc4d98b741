package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "": slog.LevelInfo,
		"warn": slog.LevelWarn, " error ": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestNew_FanoutToFile(t *testing.T) {
	t.Parallel()
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.log")
	logger, closeFn, err := New(Config{Level: slog.LevelInfo, Stderr: &stderr, File: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("compiled", "schemas", 3)
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(stderr.String(), "msg=compiled") || !strings.Contains(stderr.String(), "schemas=3") {
		t.Fatalf("stderr missing record: %q", stderr.String())
	}
	if strings.Contains(stderr.String(), "hidden") {
		t.Fatalf("debug record must be filtered at info level")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(raw), &rec); err != nil {
		t.Fatalf("log file must hold one json record: %v\n%s", err, raw)
	}
	if rec["msg"] != "compiled" || rec["app"] != "saferpay2openapi" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_BadFile(t *testing.T) {
	t.Parallel()
	if _, _, err := New(Config{File: filepath.Join(t.TempDir(), "missing", "run.log")}); err == nil {
		t.Fatalf("expected error for unwritable log file")
	}
}
