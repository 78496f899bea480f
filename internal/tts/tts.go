// Package tts turns scene narration into per-scene audio and one merged
// voice track, using the ElevenLabs API with an on-disk cache and a
// synthesized tone fallback for offline runs.
package tts

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shortsmith/shortsmith/internal/script"
)

const (
	elevenBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultVoice  = "21m00Tcm4TlvDq8ikWAM"
)

// SceneAudio is the synthesized audio for one scene.
type SceneAudio struct {
	Path     string
	Duration float64
	Cached   bool
}

// Synthesizer produces audio for scripts. An empty APIKey switches every
// call to the tone fallback so the pipeline stays runnable without accounts.
type Synthesizer struct {
	APIKey   string
	VoiceID  string
	CacheDir string
	Client   *http.Client
	Logf     func(format string, v ...any)

	// APICalls counts the ElevenLabs requests made, for the run history.
	APICalls int
}

// Calls reports the provider requests made so far.
func (s *Synthesizer) Calls() int { return s.APICalls }

// New returns a Synthesizer caching under cacheDir.
func New(apiKey, voiceID, cacheDir string) *Synthesizer {
	if voiceID == "" {
		voiceID = defaultVoice
	}
	return &Synthesizer{
		APIKey:   apiKey,
		VoiceID:  voiceID,
		CacheDir: cacheDir,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// SynthesizeScript renders every scene and merges them (with a short silence
// gap between scenes) into outPath. It returns the per-scene audio in order.
func (s *Synthesizer) SynthesizeScript(ctx context.Context, sc script.Script, outPath string) ([]SceneAudio, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("tts: cache dir: %w", err)
	}
	audios := make([]SceneAudio, 0, len(sc.Scenes))
	for i, scene := range sc.Scenes {
		a, err := s.synthesizeScene(ctx, scene, i)
		if err != nil {
			return nil, fmt.Errorf("tts: scene %d: %w", i+1, err)
		}
		audios = append(audios, a)
	}
	if err := s.merge(ctx, audios, outPath); err != nil {
		return nil, err
	}
	return audios, nil
}

func (s *Synthesizer) synthesizeScene(ctx context.Context, scene script.Scene, idx int) (SceneAudio, error) {
	path := filepath.Join(s.CacheDir, s.cacheKey(scene)+".mp3")
	if _, err := os.Stat(path); err == nil {
		dur, derr := ProbeDuration(ctx, path)
		if derr == nil {
			return SceneAudio{Path: path, Duration: dur, Cached: true}, nil
		}
		// Unreadable cache entry, resynthesize over it.
		s.logf("cached audio unreadable, regenerating: %v", derr)
	}
	var err error
	if s.APIKey != "" {
		err = s.fetchElevenLabs(ctx, scene.Text, path)
		if err != nil {
			s.logf("elevenlabs synthesis failed for scene %d, using tone fallback: %v", idx+1, err)
		}
	}
	if s.APIKey == "" || err != nil {
		if err := toneFallback(ctx, scene, path); err != nil {
			return SceneAudio{}, err
		}
	}
	dur, err := ProbeDuration(ctx, path)
	if err != nil {
		return SceneAudio{}, err
	}
	return SceneAudio{Path: path, Duration: dur}, nil
}

func (s *Synthesizer) cacheKey(scene script.Scene) string {
	sum := md5.Sum([]byte(s.VoiceID + "|" + script.Signature(scene.Text)))
	return fmt.Sprintf("%x", sum)
}

type elevenRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings map[string]any `json:"voice_settings"`
}

func (s *Synthesizer) fetchElevenLabs(ctx context.Context, text, outPath string) error {
	body, err := json.Marshal(elevenRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
		VoiceSettings: map[string]any{
			"stability":        0.45,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/%s", elevenBaseURL, s.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", s.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	s.APICalls++
	resp, err := s.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, snippet)
	}
	tmp := outPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, outPath)
}

// toneFallback synthesizes a quiet sine placeholder matching the scene's
// estimated duration, so downstream assembly can be exercised offline.
func toneFallback(ctx context.Context, scene script.Scene, outPath string) error {
	dur := scene.DurationEstimate
	if dur <= 0 {
		dur = clampInt(script.WordCount(scene.Text)/2, 3, 11)
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=440:duration=%d", dur),
		"-filter:a", "volume=0.05",
		"-q:a", "5", outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tts: tone fallback: %w: %s", err, tail(out))
	}
	return nil
}

// merge concatenates scene audio with 0.25s silence gaps into outPath.
func (s *Synthesizer) merge(ctx context.Context, audios []SceneAudio, outPath string) error {
	if len(audios) == 0 {
		return fmt.Errorf("tts: nothing to merge")
	}
	args := []string{"-y"}
	for _, a := range audios {
		args = append(args, "-i", a.Path)
	}
	var filter strings.Builder
	for i := range audios {
		fmt.Fprintf(&filter, "[%d:a]apad=pad_dur=0.25[p%d];", i, i)
	}
	for i := range audios {
		fmt.Fprintf(&filter, "[p%d]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[out]", len(audios))
	args = append(args, "-filter_complex", filter.String(), "-map", "[out]", outPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("tts: merge: %w: %s", err, tail(out))
	}
	return nil
}

// ProbeDuration returns the duration of a media file in seconds via ffprobe.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("tts: ffprobe %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("tts: parse duration %q: %w", out, err)
	}
	return dur, nil
}

func (s *Synthesizer) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *Synthesizer) logf(format string, v ...any) {
	if s.Logf != nil {
		s.Logf(format, v...)
	}
}

func tail(out []byte) string {
	const n = 300
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return strings.TrimSpace(string(out))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
