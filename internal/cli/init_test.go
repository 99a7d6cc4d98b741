package cli

import (
    "io"
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    path := filepath.Join(dir, "config.yaml")

    root := NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs([]string{"init", "--out", path})

    if err := root.Execute(); err != nil {
        t.Fatalf("init execute: %v", err)
    }

    data, err := os.ReadFile(path)
    if err != nil {
        t.Fatalf("read config: %v", err)
    }
    s := string(data)
    if !strings.Contains(s, "saferpay2openapi configuration") {
        t.Fatalf("unexpected config contents: %s", s)
    }
}

func TestInit_SampleKeysAreAccepted(t *testing.T) {
    t.Parallel()
    // Uncommenting every sample key must yield a config the generate command accepts.
    var lines []string
    for _, line := range strings.Split(sampleConfigYAML, "\n") {
        if strings.HasPrefix(line, "# ") && strings.Contains(line, ": ") && !strings.Contains(line, "configuration") {
            key := strings.TrimPrefix(line, "# ")
            if !strings.HasPrefix(strings.ToLower(key), "all fields") && !strings.HasPrefix(key, "environment") {
                lines = append(lines, key)
            }
        }
    }
    cfg := defaultGenerateConfig()
    path := filepath.Join(t.TempDir(), "full.yaml")
    if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
        t.Fatalf("write: %v", err)
    }
    if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
        t.Fatalf("sample config rejected: %v\n%s", err, strings.Join(lines, "\n"))
    }
    if cfg.APIVersion != "1.10.0" || cfg.Out != "./openapi.yaml" || len(cfg.Servers) != 1 {
        t.Fatalf("unexpected values: %+v", cfg)
    }
}

func TestInit_ExistingWithoutForce(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    path := filepath.Join(dir, "config.yaml")
    if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
        t.Fatalf("prewrite: %v", err)
    }

    root := NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs([]string{"init", "--out", path})

    err := root.Execute()
    if err == nil {
        t.Fatalf("expected error for existing file without --force")
    }
    if _, ok := err.(usageError); !ok {
        t.Fatalf("expected usage error, got %T: %v", err, err)
    }

    root = NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs([]string{"init", "--out", path, "--force"})
    if err := root.Execute(); err != nil {
        t.Fatalf("force init: %v", err)
    }
}
