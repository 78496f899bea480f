// Package script defines the core script and scene types shared across shortsmith.
package script

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Duration bounds for a finished short, in seconds.
const (
	MinTotalDuration = 30
	MaxTotalDuration = 75

	MinSceneDuration = 4
	MaxSceneDuration = 15
)

// ErrInvalid is returned when a script is empty or structurally malformed.
var ErrInvalid = errors.New("invalid script")

// Scene is a single narration beat with optional visual cues.
type Scene struct {
	Text             string   `json:"text"`
	Keywords         []string `json:"keywords,omitempty"`
	Tone             string   `json:"tone,omitempty"`
	DurationEstimate int      `json:"duration_estimate"`
}

// Script is an ordered sequence of scenes plus presentation metadata.
type Script struct {
	Title         string  `json:"title"`
	Scenes        []Scene `json:"scenes"`
	TotalDuration int     `json:"total_duration"`
}

// Validate checks the structural invariants: at least one scene, and every
// scene carrying non-empty narration.
func (s Script) Validate() error {
	if len(s.Scenes) == 0 {
		return fmt.Errorf("%w: no scenes", ErrInvalid)
	}
	for i, sc := range s.Scenes {
		if strings.TrimSpace(sc.Text) == "" {
			return fmt.Errorf("%w: scene %d has empty narration", ErrInvalid, i+1)
		}
	}
	return nil
}

// Clone returns a deep copy. Scorer and rewriter treat scripts as immutable
// values, so every transformation starts from a copy.
func (s Script) Clone() Script {
	out := Script{Title: s.Title, TotalDuration: s.TotalDuration}
	out.Scenes = make([]Scene, len(s.Scenes))
	for i, sc := range s.Scenes {
		cp := sc
		cp.Keywords = append([]string(nil), sc.Keywords...)
		out.Scenes[i] = cp
	}
	return out
}

// Hook returns the opening narration line, or "" for an empty script.
func (s Script) Hook() string {
	if len(s.Scenes) == 0 {
		return ""
	}
	return s.Scenes[0].Text
}

// WithHook returns a copy with the opening scene's narration replaced.
func (s Script) WithHook(text string) Script {
	out := s.Clone()
	if len(out.Scenes) > 0 {
		out.Scenes[0].Text = text
	}
	return out
}

// AllText joins every scene's narration into one lowercased blob, the form
// the retention scorer's word banks match against.
func (s Script) AllText() string {
	parts := make([]string, 0, len(s.Scenes))
	for _, sc := range s.Scenes {
		parts = append(parts, sc.Text)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// AllKeywords returns the deduplicated keywords across all scenes, in
// first-seen order.
func (s Script) AllKeywords() []string {
	var out []string
	seen := make(map[string]bool)
	for _, sc := range s.Scenes {
		for _, k := range sc.Keywords {
			key := strings.ToLower(strings.TrimSpace(k))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	return out
}

// SceneTexts returns the trimmed narration of every scene.
func (s Script) SceneTexts() []string {
	out := make([]string, len(s.Scenes))
	for i, sc := range s.Scenes {
		out[i] = strings.TrimSpace(sc.Text)
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

var sigPattern = regexp.MustCompile(`[a-z0-9]+`)

// Signature normalizes narration for duplicate detection: lowercase
// alphanumeric tokens joined by single spaces.
func Signature(text string) string {
	return strings.Join(sigPattern.FindAllString(strings.ToLower(text), -1), " ")
}

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// TopicTokens extracts the usable search tokens from a topic string.
func TopicTokens(topic string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(topic, -1) {
		if len(w) > 2 {
			out = append(out, strings.ToLower(w))
		}
	}
	return out
}

// DeriveKeywords picks up to four keywords from narration text, falling
// back to the supplied list when the text yields too few.
func DeriveKeywords(text string, fallback []string) []string {
	var tokens []string
	for _, w := range wordPattern.FindAllString(text, -1) {
		if len(w) > 3 {
			tokens = append(tokens, strings.ToLower(w))
		}
	}
	var out []string
	seen := make(map[string]bool)
	for _, t := range append(tokens, fallback...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) >= 4 {
			break
		}
	}
	if len(out) == 0 {
		if len(fallback) > 4 {
			return fallback[:4]
		}
		return fallback
	}
	return out
}

// TargetTotal estimates the spoken duration for the script's word count at
// conversational pace, clamped to the allowed short length.
func TargetTotal(scenes []Scene) int {
	words := 0
	for _, sc := range scenes {
		words += WordCount(sc.Text)
	}
	est := int(float64(words)/2.1+0.5) + 3
	return clamp(est, MinTotalDuration, MaxTotalDuration)
}

// RebalanceDurations derives per-scene durations from spoken length and
// nudges them until the total matches target, keeping each scene within a
// 4-11s window so short lines are not followed by dead air.
func RebalanceDurations(scenes []Scene, target int) []Scene {
	if len(scenes) == 0 {
		return scenes
	}
	raw := make([]int, len(scenes))
	for i, sc := range scenes {
		words := WordCount(sc.Text)
		raw[i] = clamp(int(float64(words)/2.4+0.5), 4, 11)
	}
	current := 0
	for _, d := range raw {
		current += d
	}
	if current == 0 {
		current = 1
	}
	scale := float64(target) / float64(current)
	if scale < 0.7 {
		scale = 0.7
	}
	if scale > 1.4 {
		scale = 1.4
	}
	scaled := make([]int, len(raw))
	total := 0
	for i, d := range raw {
		scaled[i] = clamp(int(float64(d)*scale+0.5), 4, 11)
		total += scaled[i]
	}
	for i := 0; total != target && i < 500; i++ {
		idx := i % len(scaled)
		switch {
		case total < target && scaled[idx] < 11:
			scaled[idx]++
			total++
		case total > target && scaled[idx] > 4:
			scaled[idx]--
			total--
		}
	}
	out := make([]Scene, len(scenes))
	for i, sc := range scenes {
		sc.DurationEstimate = scaled[i]
		out[i] = sc
	}
	return out
}

// Normalize collapses whitespace, dedupes scene lines, rebalances scene
// durations, and recomputes the total. The result satisfies Validate or an
// error is returned.
func Normalize(s Script) (Script, error) {
	out := s.Clone()
	var kept []Scene
	seen := make(map[string]bool)
	for i, sc := range out.Scenes {
		text := strings.Join(strings.Fields(sc.Text), " ")
		if text == "" {
			continue
		}
		low := strings.ToLower(text)
		if seen[low] {
			text = fmt.Sprintf("%s - part %d", text, i+1)
			low = strings.ToLower(text)
		}
		seen[low] = true
		sc.Text = text
		sc.DurationEstimate = clamp(sc.DurationEstimate, MinSceneDuration, MaxSceneDuration)
		if len(sc.Keywords) == 0 {
			sc.Keywords = DeriveKeywords(text, nil)
		}
		kept = append(kept, sc)
	}
	if len(kept) == 0 {
		return Script{}, fmt.Errorf("%w: no scenes with narration", ErrInvalid)
	}
	out.Scenes = RebalanceDurations(kept, TargetTotal(kept))
	total := 0
	for _, sc := range out.Scenes {
		total += sc.DurationEstimate
	}
	out.TotalDuration = clamp(total, MinTotalDuration, MaxTotalDuration)
	out.Title = strings.TrimSpace(out.Title)
	if len(out.Title) > 110 {
		out.Title = out.Title[:110]
	}
	return out, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
