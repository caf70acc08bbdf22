package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("want default port 8080, got %d", cfg.Port)
	}
	if cfg.Workers != 1 {
		t.Fatalf("want default workers 1, got %d", cfg.Workers)
	}
	if cfg.StageTimeout != 30*time.Second {
		t.Fatalf("want default stage timeout 30s, got %s", cfg.StageTimeout)
	}
	if cfg.DefaultLanguage != "en" {
		t.Fatalf("want default language en, got %s", cfg.DefaultLanguage)
	}
	if cfg.BroadcastCompat {
		t.Fatal("broadcast compat must be off by default")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_ENV", "dev")
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := []byte("port: 9001\nworkers: 4\nqueue_size: 32\nstage_timeout: 5s\nbroadcast_compat: true\nvoices:\n  es: coral\n")
	if err := os.WriteFile(filepath.Join(dir, "config", "config.dev.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9001 || cfg.Workers != 4 || cfg.QueueSize != 32 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.StageTimeout != 5*time.Second {
		t.Fatalf("want 5s stage timeout, got %s", cfg.StageTimeout)
	}
	if !cfg.BroadcastCompat {
		t.Fatal("broadcast_compat not applied")
	}
	if cfg.Voices["es"] != "coral" {
		t.Fatalf("voice map not applied: %v", cfg.Voices)
	}
}

func TestTokensComeFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_TOKEN", "sk-test")
	t.Setenv("DEEPL_TOKEN", "dl-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAIToken != "sk-test" {
		t.Fatalf("openai token not bound from env: %q", cfg.OpenAIToken)
	}
	if cfg.DeepLToken != "dl-test" {
		t.Fatalf("deepl token not bound from env: %q", cfg.DeepLToken)
	}
}
