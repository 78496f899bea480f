package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shortsmith/shortsmith/internal/review"
	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

// Prompter presents each gate round as a full-screen review and returns the
// operator's decision. It satisfies review.Prompter.
type Prompter struct {
	// newProgram is swapped in tests.
	newProgram func(tea.Model) interface {
		Run() (tea.Model, error)
	}
}

// NewPrompter returns a Prompter running real terminal programs.
func NewPrompter() *Prompter {
	return &Prompter{
		newProgram: func(m tea.Model) interface {
			Run() (tea.Model, error)
		} {
			return tea.NewProgram(m, tea.WithAltScreen())
		},
	}
}

// Review implements review.Prompter.
func (p *Prompter) Review(ctx context.Context, sc script.Script, res score.Result, exhausted bool) (review.Decision, script.Script, error) {
	if err := ctx.Err(); err != nil {
		return review.DecisionRejected, script.Script{}, err
	}
	final, err := p.newProgram(New(sc, res, exhausted)).Run()
	if err != nil {
		return review.DecisionRejected, script.Script{}, fmt.Errorf("tui: %w", err)
	}
	m, ok := final.(Model)
	if !ok || !m.done {
		return review.DecisionRejected, script.Script{}, nil
	}
	if m.decision == review.DecisionEdit {
		return review.DecisionEdit, m.edited, nil
	}
	return m.decision, script.Script{}, nil
}
