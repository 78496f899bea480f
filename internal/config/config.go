// Package config loads shortsmith settings from the environment and the
// per-channel profiles file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the review gate.
const (
	DefaultHookThreshold = 70
	DefaultMaxRetries    = 3
)

// ErrChannelNotFound is returned when a named channel has no profile.
var ErrChannelNotFound = errors.New("config: channel not found")

// Config is the resolved runtime configuration.
type Config struct {
	OpenAIKey     string
	OpenAIModel   string
	ElevenLabsKey string
	PixabayKey    string
	PexelsKey     string

	HookThreshold int
	MaxRetries    int
	Unattended    bool

	WorkDir    string
	OutputDir  string
	CacheDir   string
	LogDir     string
	HistoryDB  string
	ChannelsFn string
}

// Channel is one entry from channels.json.
type Channel struct {
	Name          string   `json:"name"`
	PromptFile    string   `json:"prompt_file,omitempty"`
	LanguageMode  string   `json:"language_mode,omitempty"`
	MaxScenes     int      `json:"max_scenes,omitempty"`
	HookThreshold int      `json:"hook_threshold_score,omitempty"`
	VoiceID       string   `json:"elevenlabs_voice_id,omitempty"`
	MusicMood     string   `json:"music_mood,omitempty"`
	Topics        []string `json:"topics,omitempty"`
}

// Load reads .env if present, then resolves the configuration from the
// environment. Missing API keys are not an error here; stages degrade to
// their offline fallbacks when a key is empty.
func Load() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	work := envOr("SHORTSMITH_WORKDIR", "shortsmith-data")
	cfg := Config{
		OpenAIKey:     firstEnv("OPENAI_API_KEY", "OPENAI_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", ""),
		ElevenLabsKey: firstEnv("ELEVENLABS_API_KEY", "ELEVEN_API_KEY"),
		PixabayKey:    os.Getenv("PIXABAY_API_KEY"),
		PexelsKey:     os.Getenv("PEXELS_API_KEY"),

		HookThreshold: envInt("SHORTSMITH_HOOK_THRESHOLD", DefaultHookThreshold),
		MaxRetries:    envInt("SHORTSMITH_MAX_RETRIES", DefaultMaxRetries),
		Unattended:    envBool("SHORTSMITH_UNATTENDED"),

		WorkDir:    work,
		OutputDir:  envOr("SHORTSMITH_OUTPUT_DIR", filepath.Join(work, "output")),
		CacheDir:   envOr("SHORTSMITH_CACHE_DIR", filepath.Join(work, "cache")),
		LogDir:     envOr("SHORTSMITH_LOG_DIR", filepath.Join(work, "logs")),
		HistoryDB:  envOr("SHORTSMITH_HISTORY_DB", filepath.Join(work, "history.db")),
		ChannelsFn: envOr("SHORTSMITH_CHANNELS", "channels.json"),
	}
	if cfg.HookThreshold < 0 || cfg.HookThreshold > 100 {
		return Config{}, fmt.Errorf("config: hook threshold %d out of range", cfg.HookThreshold)
	}
	if cfg.MaxRetries < 0 {
		return Config{}, fmt.Errorf("config: max retries %d out of range", cfg.MaxRetries)
	}
	return cfg, nil
}

// EnsureDirs creates the working directory tree.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.WorkDir, c.OutputDir, c.CacheDir, c.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return nil
}

// LoadChannels parses the channel profiles file.
func LoadChannels(path string) ([]Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read channels: %w", err)
	}
	var channels []Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, fmt.Errorf("config: parse channels: %w", err)
	}
	for i := range channels {
		if channels[i].Name == "" {
			return nil, fmt.Errorf("config: channel %d has no name", i)
		}
		if channels[i].MaxScenes <= 0 {
			channels[i].MaxScenes = 6
		}
		if channels[i].LanguageMode == "" {
			channels[i].LanguageMode = "english"
		}
	}
	return channels, nil
}

// FindChannel returns the profile for name.
func FindChannel(channels []Channel, name string) (Channel, error) {
	for _, ch := range channels {
		if ch.Name == name {
			return ch, nil
		}
	}
	return Channel{}, fmt.Errorf("%w: %s", ErrChannelNotFound, name)
}

// PromptText reads the channel's prompt file, or returns "" when none is set.
func (ch Channel) PromptText() (string, error) {
	if ch.PromptFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(ch.PromptFile)
	if err != nil {
		return "", fmt.Errorf("config: read prompt for %s: %w", ch.Name, err)
	}
	return string(data), nil
}

// Threshold returns the channel override or the global default.
func (ch Channel) Threshold(global int) int {
	if ch.HookThreshold > 0 {
		return ch.HookThreshold
	}
	return global
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
