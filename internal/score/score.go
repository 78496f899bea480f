// Package score implements heuristic retention scoring for shorts scripts.
package score

import (
	"fmt"
	"strings"

	"github.com/shortsmith/shortsmith/internal/script"
)

// Word banks the sub-scores match against. Matching is substring-based over
// the lowercased narration, so each entry must stay lowercase.
var (
	emotionWords = []string{
		"shock", "secret", "crazy", "instant", "truth",
		"fail", "mistake", "win", "power", "danger",
	}
	curiosityWords = []string{
		"why", "how", "what", "revealed", "unexpected", "but", "wait",
	}
	ctaWords = []string{
		"follow", "share", "comment", "subscribe", "save", "try",
	}
)

// Signal identifies one retention sub-score.
type Signal int

const (
	SignalHook Signal = iota
	SignalQuestion
	SignalEmotion
	SignalCuriosity
	SignalVariation
	SignalDuration
	SignalCTA
)

func (s Signal) String() string {
	switch s {
	case SignalHook:
		return "hook"
	case SignalQuestion:
		return "question"
	case SignalEmotion:
		return "emotion"
	case SignalCuriosity:
		return "curiosity"
	case SignalVariation:
		return "variation"
	case SignalDuration:
		return "duration"
	case SignalCTA:
		return "cta"
	default:
		return "unknown"
	}
}

// Maximum value of each sub-score. The maxima sum to 100.
var signalMax = map[Signal]int{
	SignalHook:      25,
	SignalQuestion:  10,
	SignalEmotion:   15,
	SignalCuriosity: 15,
	SignalVariation: 10,
	SignalDuration:  15,
	SignalCTA:       10,
}

// Max returns the highest value the signal can contribute.
func (s Signal) Max() int { return signalMax[s] }

// Result is the immutable outcome of scoring one script.
type Result struct {
	Total     int `json:"total"`
	Hook      int `json:"hook"`
	Question  int `json:"question"`
	Emotion   int `json:"emotion"`
	Curiosity int `json:"curiosity"`
	Variation int `json:"variation"`
	Duration  int `json:"duration"`
	CTA       int `json:"cta"`
}

// Sub returns the value of a single sub-score.
func (r Result) Sub(s Signal) int {
	switch s {
	case SignalHook:
		return r.Hook
	case SignalQuestion:
		return r.Question
	case SignalEmotion:
		return r.Emotion
	case SignalCuriosity:
		return r.Curiosity
	case SignalVariation:
		return r.Variation
	case SignalDuration:
		return r.Duration
	case SignalCTA:
		return r.CTA
	default:
		return 0
	}
}

// signalOrder fixes iteration order so Weakest is deterministic.
var signalOrder = []Signal{
	SignalHook, SignalQuestion, SignalEmotion, SignalCuriosity,
	SignalVariation, SignalDuration, SignalCTA,
}

// Signals returns every scored signal in display order.
func Signals() []Signal {
	return append([]Signal(nil), signalOrder...)
}

// Weakest returns the sub-score with the largest absolute deficit from its
// maximum. Ties resolve in signal order, so the hook wins any tie.
func (r Result) Weakest() Signal {
	best := signalOrder[0]
	bestDeficit := -1
	for _, s := range signalOrder {
		deficit := s.Max() - r.Sub(s)
		if deficit > bestDeficit {
			best = s
			bestDeficit = deficit
		}
	}
	return best
}

// Summary returns a one-line breakdown for logs and review output.
func (r Result) Summary() string {
	parts := make([]string, 0, len(signalOrder))
	for _, s := range signalOrder {
		parts = append(parts, fmt.Sprintf("%s %d/%d", s, r.Sub(s), s.Max()))
	}
	return fmt.Sprintf("%d/100 (%s)", r.Total, strings.Join(parts, ", "))
}

// Score evaluates a script against the retention heuristics. It is
// deterministic: identical input always yields an identical Result. A low
// score is the normal path; only an empty or malformed script is an error.
func Score(s script.Script) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}

	first := s.Scenes[0].Text
	all := s.AllText()

	var r Result

	if script.WordCount(first) <= 14 {
		r.Hook = 25
	} else {
		r.Hook = 12
	}

	if strings.Contains(first, "?") || strings.Contains(all, "?") {
		r.Question = 10
	}

	r.Emotion = min15(countHits(all, emotionWords) * 3)
	r.Curiosity = min15(countHits(all, curiosityWords) * 3)

	lengths := make(map[int]bool)
	for _, sc := range s.Scenes {
		lengths[script.WordCount(sc.Text)] = true
	}
	if len(lengths) >= 3 {
		r.Variation = 10
	} else {
		r.Variation = 5
	}

	if s.TotalDuration >= script.MinTotalDuration && s.TotalDuration <= script.MaxTotalDuration {
		r.Duration = 15
	} else {
		r.Duration = 5
	}

	closing := strings.ToLower(s.Scenes[len(s.Scenes)-1].Text)
	if countHits(closing, ctaWords) > 0 {
		r.CTA = 10
	} else {
		r.CTA = 4
	}

	total := r.Hook + r.Question + r.Emotion + r.Curiosity + r.Variation + r.Duration + r.CTA
	if total > 100 {
		total = 100
	}
	r.Total = total
	return r, nil
}

func countHits(text string, bank []string) int {
	n := 0
	for _, w := range bank {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func min15(v int) int {
	if v > 15 {
		return 15
	}
	return v
}
