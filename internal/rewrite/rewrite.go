// Package rewrite mechanically strengthens low-scoring scripts, targeting
// the weakest retention sub-score.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

// ErrProviderUnavailable is returned when the variant provider keeps
// failing after the local retry. Callers treat the attempt as exhausted
// rather than failing the whole run.
var ErrProviderUnavailable = errors.New("rewrite provider unavailable")

// VariantRequest is the contract with the hook-variant provider: the
// current script plus the weakness the rewrite should target.
type VariantRequest struct {
	Script       script.Script
	Topic        string
	LanguageMode string
	Weakness     score.Signal
}

// Provider supplies candidate hook lines. Implementations are external
// collaborators (an LLM, or the deterministic local phrase bank).
type Provider interface {
	HookVariants(ctx context.Context, req VariantRequest) ([]string, error)
}

// Rewriter transforms a script into a higher-scoring variant. It is a pure
// transform over its input; the only side effect is the provider call.
type Rewriter struct {
	Provider     Provider
	Topic        string
	LanguageMode string

	// Blocked holds normalized signatures of recently used hooks so back-
	// to-back runs do not reuse the same opening.
	Blocked map[string]bool

	// RetryDelay is the backoff before the single provider retry.
	// Injectable so tests do not sleep.
	RetryDelay time.Duration

	// Logf receives audit lines for provider recoveries. Defaults to the
	// standard logger.
	Logf func(format string, args ...any)
}

// New returns a Rewriter backed by the given provider. A nil provider
// falls back to the local phrase bank.
func New(provider Provider, topic, languageMode string) *Rewriter {
	if provider == nil {
		provider = &BankProvider{}
	}
	return &Rewriter{
		Provider:     provider,
		Topic:        topic,
		LanguageMode: languageMode,
		Blocked:      make(map[string]bool),
		RetryDelay:   2 * time.Second,
	}
}

// Rewrite returns a new script with the weakest sub-score addressed. The
// boolean reports a no-op: the input already has maximal mechanical
// features and no further improvement is derivable, so the caller should
// stop looping. ErrProviderUnavailable is returned only after one retry.
func (rw *Rewriter) Rewrite(ctx context.Context, s script.Script, res score.Result) (script.Script, bool, error) {
	if err := s.Validate(); err != nil {
		return script.Script{}, false, err
	}

	weakness := res.Weakest()

	if weakness == score.SignalHook {
		out, improved, err := rw.rewriteHook(ctx, s, res, weakness)
		if err != nil {
			return script.Script{}, false, err
		}
		if improved {
			return out, false, nil
		}
		// No candidate beat the current hook; fall through to the broader
		// mechanical rescue before declaring a no-op.
	}

	rescued := rw.rescue(s)
	rescuedRes, err := score.Score(rescued)
	if err != nil {
		return script.Script{}, false, err
	}
	if rescuedRes.Total > res.Total {
		return rescued, false, nil
	}
	return s, true, nil
}

// rewriteHook asks the provider for candidate openings and keeps the
// highest-scoring one that strictly beats the current total.
func (rw *Rewriter) rewriteHook(ctx context.Context, s script.Script, res score.Result, weakness score.Signal) (script.Script, bool, error) {
	req := VariantRequest{
		Script:       s,
		Topic:        rw.topic(s),
		LanguageMode: rw.LanguageMode,
		Weakness:     weakness,
	}

	variants, err := rw.Provider.HookVariants(ctx, req)
	if err != nil {
		rw.logf("hook variant provider failed, retrying once: %v", err)
		select {
		case <-ctx.Done():
			return script.Script{}, false, ctx.Err()
		case <-time.After(rw.RetryDelay):
		}
		variants, err = rw.Provider.HookVariants(ctx, req)
		if err != nil {
			return script.Script{}, false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
	}

	currentSig := script.Signature(s.Hook())
	best := s
	bestTotal := res.Total
	improved := false
	for _, hook := range variants {
		hook = strings.TrimSpace(hook)
		if hook == "" {
			continue
		}
		sig := script.Signature(hook)
		if sig == currentSig || rw.Blocked[sig] {
			continue
		}
		candidate := s.WithHook(hook)
		candidateRes, err := score.Score(candidate)
		if err != nil {
			continue
		}
		if candidateRes.Total > bestTotal {
			best = candidate
			bestTotal = candidateRes.Total
			improved = true
		}
	}
	return best, improved, nil
}

// rescue applies the deterministic scorer-friendly transforms: a strong
// opening, a call-to-action tail on the closing scene, and a duration
// rebalance when the total is out of range.
func (rw *Rewriter) rescue(s script.Script) script.Script {
	out := s.Clone()
	topic := rw.topic(s)

	strong := strongHook(topic)
	if script.Signature(out.Hook()) != script.Signature(strong) && !rw.Blocked[script.Signature(strong)] {
		out.Scenes[0].Text = strong
	}

	last := len(out.Scenes) - 1
	closing := strings.ToLower(out.Scenes[last].Text)
	if !containsAny(closing, "follow", "share", "comment", "save", "subscribe", "try") {
		out.Scenes[last].Text = strings.TrimSpace(out.Scenes[last].Text + " " + ctaTail)
	}

	if out.TotalDuration < script.MinTotalDuration || out.TotalDuration > script.MaxTotalDuration {
		out.Scenes = script.RebalanceDurations(out.Scenes, script.TargetTotal(out.Scenes))
		total := 0
		for _, sc := range out.Scenes {
			total += sc.DurationEstimate
		}
		out.TotalDuration = total
	}
	return out
}

func (rw *Rewriter) topic(s script.Script) string {
	if rw.Topic != "" {
		return rw.Topic
	}
	if kws := s.AllKeywords(); len(kws) > 0 {
		return kws[0]
	}
	if s.Title != "" {
		return s.Title
	}
	return "this"
}

func (rw *Rewriter) logf(format string, args ...any) {
	if rw.Logf != nil {
		rw.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

const ctaTail = "Save this, try it once, then follow and comment your result."

func strongHook(topic string) string {
	return fmt.Sprintf("Wait... the secret truth about %s: which mistake quietly kills your result?", topic)
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
