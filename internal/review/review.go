// Package review drives the score/rewrite loop and gates human approval
// before any costly downstream call is made.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shortsmith/shortsmith/internal/rewrite"
	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

// Decision is the operator's verdict at the review gate.
type Decision int

const (
	DecisionApproved Decision = iota
	DecisionEdit
	DecisionRejected
)

func (d Decision) String() string {
	switch d {
	case DecisionApproved:
		return "approved"
	case DecisionEdit:
		return "edit"
	case DecisionRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ErrUnknownDecision reports an unrecognized operator input token.
// Prompters recover by re-prompting; the gate never defaults to approve.
var ErrUnknownDecision = errors.New("unknown review decision")

// ParseDecision maps an operator input token to a Decision.
func ParseDecision(token string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "y", "yes", "a", "approve", "approved":
		return DecisionApproved, nil
	case "e", "edit":
		return DecisionEdit, nil
	case "n", "no", "r", "reject", "rejected":
		return DecisionRejected, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDecision, token)
	}
}

// ErrRejected is returned when the operator rejects the run. No downstream
// call may be issued after it.
var ErrRejected = errors.New("run rejected at review gate")

// Prompter presents a script plus its score to the operator and returns a
// decision. For DecisionEdit the edited script is returned alongside.
// Implementations own re-prompting on invalid input.
type Prompter interface {
	Review(ctx context.Context, s script.Script, res score.Result, exhausted bool) (Decision, script.Script, error)
}

// Rewriter is the hook-rewrite collaborator. *rewrite.Rewriter satisfies it.
type Rewriter interface {
	Rewrite(ctx context.Context, s script.Script, res score.Result) (script.Script, bool, error)
}

// ScoreFunc scores a script. Tests substitute deterministic stand-ins.
type ScoreFunc func(script.Script) (score.Result, error)

// Config holds the caller-supplied review gate tuning.
type Config struct {
	Threshold  int // overall score required to pass without rewrites
	MaxRetries int // automatic rewrite budget per run
}

// DefaultConfig mirrors the run command's flag defaults.
func DefaultConfig() Config {
	return Config{Threshold: 70, MaxRetries: 3}
}

// Attempt records one loop iteration for the run audit trail.
type Attempt struct {
	Number int
	Input  script.Script
	Output script.Script
	Result score.Result
}

// Outcome is the approved hand-off to the downstream pipeline.
type Outcome struct {
	Script    script.Script
	Result    score.Result
	Attempts  []Attempt
	Rewrites  int
	Exhausted bool // retry budget spent or rewriter signaled no-op
	Edited    bool // operator supplied manual edits at least once
}

// Gate owns the loop's mutable state: the current script, the attempt
// count, and the best attempt seen so far.
type Gate struct {
	cfg      Config
	score    ScoreFunc
	rewriter Rewriter
	prompter Prompter
	logf     func(format string, args ...any)
}

// NewGate wires a review gate. scoreFn may be nil to use score.Score.
func NewGate(cfg Config, rewriter Rewriter, prompter Prompter, scoreFn ScoreFunc) *Gate {
	if scoreFn == nil {
		scoreFn = score.Score
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Gate{
		cfg:      cfg,
		score:    scoreFn,
		rewriter: rewriter,
		prompter: prompter,
		logf:     log.Printf,
	}
}

// SetLogf overrides the audit logger (tests silence it).
func (g *Gate) SetLogf(fn func(format string, args ...any)) {
	if fn != nil {
		g.logf = fn
	}
}

// best tracks the highest-scoring attempt. Ties keep the earliest attempt.
type best struct {
	set    bool
	script script.Script
	result score.Result
}

func (b *best) consider(s script.Script, r score.Result) {
	if !b.set || r.Total > b.result.Total {
		b.set = true
		b.script = s
		b.result = r
	}
}

// Run drives the state machine to a terminal decision. The loop performs
// at most MaxRetries rewrites, so no more than MaxRetries+1 scoring calls
// happen before the operator is consulted. On rejection it returns
// ErrRejected and guarantees no further collaborator calls were issued.
func (g *Gate) Run(ctx context.Context, initial script.Script) (*Outcome, error) {
	out := &Outcome{}
	current := initial

	for {
		final, res, err := g.reviewLoop(ctx, current, out)
		if err != nil {
			return nil, err
		}

		decision, edited, err := g.prompter.Review(ctx, final, res, out.Exhausted)
		if err != nil {
			return nil, fmt.Errorf("review prompt: %w", err)
		}

		switch decision {
		case DecisionApproved:
			out.Script = final
			out.Result = res
			return out, nil

		case DecisionRejected:
			g.logf("review gate: run rejected by operator (score %d)", res.Total)
			return nil, ErrRejected

		case DecisionEdit:
			normalized, err := script.Normalize(edited)
			if err != nil {
				return nil, fmt.Errorf("edited script: %w", err)
			}
			// Manual edits reset the automatic retry budget.
			g.logf("review gate: operator edit, attempt counter reset")
			out.Edited = true
			out.Exhausted = false
			current = normalized

		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownDecision, decision)
		}
	}
}

// reviewLoop runs Scoring -> Rewriting cycles until the threshold passes,
// the retry budget is exhausted, or the rewriter signals a no-op. It
// returns the best-scoring attempt seen.
func (g *Gate) reviewLoop(ctx context.Context, current script.Script, out *Outcome) (script.Script, score.Result, error) {
	var top best
	retries := 0

	res, err := g.score(current)
	if err != nil {
		return script.Script{}, score.Result{}, fmt.Errorf("scoring attempt %d: %w", len(out.Attempts)+1, err)
	}
	out.Attempts = append(out.Attempts, Attempt{
		Number: len(out.Attempts) + 1,
		Input:  current,
		Output: current,
		Result: res,
	})
	top.consider(current, res)

	for res.Total < g.cfg.Threshold && retries < g.cfg.MaxRetries {
		g.logf("review gate: score %d below threshold %d, rewriting (attempt %d of %d)",
			res.Total, g.cfg.Threshold, retries+1, g.cfg.MaxRetries)

		rewritten, noop, err := g.rewriter.Rewrite(ctx, current, res)
		if err != nil {
			if errors.Is(err, rewrite.ErrProviderUnavailable) {
				// Recovered locally: present the best prior attempt instead
				// of failing the run.
				g.logf("review gate: rewrite attempt %d abandoned (%v), keeping best prior attempt", retries+1, err)
				out.Exhausted = true
				return top.script, top.result, nil
			}
			return script.Script{}, score.Result{}, fmt.Errorf("rewrite attempt %d: %w", retries+1, err)
		}
		if noop {
			g.logf("review gate: rewriter signaled no-op at attempt %d, stopping early", retries+1)
			out.Exhausted = true
			return top.script, top.result, nil
		}

		retries++
		out.Rewrites++

		input := current
		current = rewritten
		res, err = g.score(current)
		if err != nil {
			return script.Script{}, score.Result{}, fmt.Errorf("scoring attempt %d: %w", len(out.Attempts)+1, err)
		}
		out.Attempts = append(out.Attempts, Attempt{
			Number: len(out.Attempts) + 1,
			Input:  input,
			Output: current,
			Result: res,
		})
		top.consider(current, res)
	}

	if res.Total < g.cfg.Threshold {
		g.logf("review gate: retry budget exhausted at score %d, presenting best attempt (score %d)",
			res.Total, top.result.Total)
		out.Exhausted = true
	}
	return top.script, top.result, nil
}
