package review

import (
	"context"
	"fmt"

	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

// AutoPrompter approves unattended runs when the presented score clears
// MinScore and rejects otherwise. It never edits.
type AutoPrompter struct {
	MinScore int
}

// Review implements Prompter.
func (p *AutoPrompter) Review(ctx context.Context, s script.Script, res score.Result, exhausted bool) (Decision, script.Script, error) {
	if res.Total >= p.MinScore {
		return DecisionApproved, script.Script{}, nil
	}
	return DecisionRejected, script.Script{}, nil
}

// scriptedStep is one pre-supplied decision for a ScriptedPrompter.
type scriptedStep struct {
	decision Decision
	edited   script.Script
}

// ScriptedPrompter replays pre-supplied decisions in order. It exists for
// deterministic gate tests and for piping decisions from non-interactive
// callers.
type ScriptedPrompter struct {
	steps []scriptedStep
	next  int

	// Presented records what each prompt showed, for assertions.
	Presented []score.Result
}

// NewScriptedPrompter starts with no steps; chain Then* calls.
func NewScriptedPrompter() *ScriptedPrompter {
	return &ScriptedPrompter{}
}

// ThenApprove appends an approve decision.
func (p *ScriptedPrompter) ThenApprove() *ScriptedPrompter {
	p.steps = append(p.steps, scriptedStep{decision: DecisionApproved})
	return p
}

// ThenReject appends a reject decision.
func (p *ScriptedPrompter) ThenReject() *ScriptedPrompter {
	p.steps = append(p.steps, scriptedStep{decision: DecisionRejected})
	return p
}

// ThenEdit appends an edit decision supplying the edited script.
func (p *ScriptedPrompter) ThenEdit(edited script.Script) *ScriptedPrompter {
	p.steps = append(p.steps, scriptedStep{decision: DecisionEdit, edited: edited})
	return p
}

// Review implements Prompter.
func (p *ScriptedPrompter) Review(ctx context.Context, s script.Script, res score.Result, exhausted bool) (Decision, script.Script, error) {
	p.Presented = append(p.Presented, res)
	if p.next >= len(p.steps) {
		return 0, script.Script{}, fmt.Errorf("scripted prompter: no decision left for prompt %d", p.next+1)
	}
	step := p.steps[p.next]
	p.next++
	return step.decision, step.edited, nil
}
