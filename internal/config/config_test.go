package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SHORTSMITH_WORKDIR", "SHORTSMITH_HOOK_THRESHOLD", "SHORTSMITH_MAX_RETRIES",
		"SHORTSMITH_UNATTENDED", "SHORTSMITH_HISTORY_DB",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HookThreshold != DefaultHookThreshold {
		t.Errorf("HookThreshold = %d, want %d", cfg.HookThreshold, DefaultHookThreshold)
	}
	if cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", cfg.MaxRetries, DefaultMaxRetries)
	}
	if cfg.Unattended {
		t.Error("Unattended should default to false")
	}
	if cfg.HistoryDB != filepath.Join(cfg.WorkDir, "history.db") {
		t.Errorf("HistoryDB = %q", cfg.HistoryDB)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHORTSMITH_HOOK_THRESHOLD", "85")
	t.Setenv("SHORTSMITH_MAX_RETRIES", "1")
	t.Setenv("SHORTSMITH_UNATTENDED", "true")
	t.Setenv("OPENAI_KEY", "alias-key")
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HookThreshold != 85 || cfg.MaxRetries != 1 || !cfg.Unattended {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.OpenAIKey != "alias-key" {
		t.Errorf("OpenAIKey alias not resolved, got %q", cfg.OpenAIKey)
	}
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	t.Setenv("SHORTSMITH_HOOK_THRESHOLD", "140")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for threshold above 100")
	}
}

func TestLoadChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	data := `[
	  {"name": "tech", "language_mode": "english", "max_scenes": 5, "hook_threshold_score": 75},
	  {"name": "funny"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	channels, err := LoadChannels(path)
	if err != nil {
		t.Fatalf("LoadChannels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("channels = %d, want 2", len(channels))
	}
	tech, err := FindChannel(channels, "tech")
	if err != nil {
		t.Fatal(err)
	}
	if tech.Threshold(70) != 75 {
		t.Errorf("tech threshold = %d, want 75", tech.Threshold(70))
	}
	funny, _ := FindChannel(channels, "funny")
	if funny.MaxScenes != 6 || funny.LanguageMode != "english" {
		t.Errorf("funny defaults not applied: %+v", funny)
	}
	if funny.Threshold(70) != 70 {
		t.Errorf("funny threshold = %d, want the global default", funny.Threshold(70))
	}
	if _, err := FindChannel(channels, "missing"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("err = %v, want ErrChannelNotFound", err)
	}
}

func TestLoadChannelsRejectsUnnamed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	if err := os.WriteFile(path, []byte(`[{"max_scenes": 4}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChannels(path); err == nil {
		t.Fatal("expected error for channel without a name")
	}
}
