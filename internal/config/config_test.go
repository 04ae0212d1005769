package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chatscope-app/chatscope/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Database.MaxOpenConns != 1 {
		t.Errorf("max open conns = %d, want 1", cfg.Database.MaxOpenConns)
	}
	if cfg.AI.Enabled() {
		t.Error("AI enabled without an API key")
	}
	if cfg.Analysis.TopWords != 50 {
		t.Errorf("top words = %d, want 50", cfg.Analysis.TopWords)
	}
	if cfg.Analysis.ContextSize != 10 {
		t.Errorf("context size = %d, want 10", cfg.Analysis.ContextSize)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  json: false
server:
  addr: ":9000"
uploads:
  retention: 48h
ai:
  api_key: test-key
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.JSON {
		t.Errorf("log = %+v, want debug/text", cfg.Log)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("server addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Uploads.Retention != 48*time.Hour {
		t.Errorf("retention = %v, want 48h", cfg.Uploads.Retention)
	}
	if !cfg.AI.Enabled() {
		t.Error("AI not enabled despite API key")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
log:
  level: loud
`)
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for bad log level")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
