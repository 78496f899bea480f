package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shortsmith/shortsmith/internal/review"
	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

func testScript() script.Script {
	return script.Script{
		Title: "Why Caching Wins",
		Scenes: []script.Scene{
			{Text: "What is the secret behind fast apps?", Keywords: []string{"server"}, Tone: "energetic", DurationEstimate: 6},
			{Text: "Caching does the heavy lifting while you sleep.", Keywords: []string{"datacenter"}, DurationEstimate: 8},
			{Text: "Follow for more performance tips.", Keywords: []string{"keyboard"}, DurationEstimate: 6},
		},
		TotalDuration: 40,
	}
}

func setupModel(t *testing.T) Model {
	t.Helper()
	res, err := score.Score(testScript())
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	m := New(testScript(), res, false)
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	if m.done {
		t.Error("model should start undecided")
	}
	if len(m.lines) == 0 {
		t.Error("expected scene lines to be rendered")
	}
	if m.mode != viewScenes {
		t.Error("expected scene view by default")
	}
}

func TestApproveKey(t *testing.T) {
	m := setupModel(t)

	newM, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	m = newM.(Model)
	if !m.done || m.decision != review.DecisionApproved {
		t.Errorf("decision = %v done = %v, want approved", m.decision, m.done)
	}
	if cmd == nil {
		t.Error("approve should quit the program")
	}
}

func TestRejectKey(t *testing.T) {
	m := setupModel(t)

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = newM.(Model)
	if !m.done || m.decision != review.DecisionRejected {
		t.Errorf("decision = %v done = %v, want rejected", m.decision, m.done)
	}
}

func TestToggleJSONView(t *testing.T) {
	m := setupModel(t)

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	m = newM.(Model)
	if m.mode != viewJSON {
		t.Error("expected JSON view after toggle")
	}
	joined := strings.Join(m.lines, "\n")
	if !strings.Contains(joined, "total_duration") {
		t.Error("JSON view should show the script fields")
	}

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	m = newM.(Model)
	if m.mode != viewScenes {
		t.Error("expected scene view after second toggle")
	}
}

func TestScrolling(t *testing.T) {
	m := setupModel(t)

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = newM.(Model)
	if m.scrollOffset != 1 {
		t.Errorf("expected scrollOffset 1, got %d", m.scrollOffset)
	}

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = newM.(Model)
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset 0, got %d", m.scrollOffset)
	}

	// Can't scroll above 0
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = newM.(Model)
	if m.scrollOffset != 0 {
		t.Errorf("expected scrollOffset 0 at top, got %d", m.scrollOffset)
	}
}

func TestEditFlow(t *testing.T) {
	m := setupModel(t)

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m = newM.(Model)
	if !m.editing {
		t.Fatal("expected edit mode")
	}
	if !strings.Contains(m.editor.Value(), "Caching does the heavy lifting") {
		t.Error("editor should be seeded with scene texts")
	}

	m.editor.SetValue("A brand new hook line?\nMiddle scene stays informative and useful.\nFollow and comment your result.")
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = newM.(Model)
	if !m.done || m.decision != review.DecisionEdit {
		t.Fatalf("decision = %v done = %v, want edit", m.decision, m.done)
	}
	if m.edited.Hook() != "A brand new hook line?" {
		t.Errorf("edited hook = %q", m.edited.Hook())
	}
	if len(m.edited.Scenes) != 3 {
		t.Errorf("edited scenes = %d, want 3", len(m.edited.Scenes))
	}
	// Keywords carry over positionally.
	if len(m.edited.Scenes[0].Keywords) == 0 {
		t.Error("edited scenes lost their keywords")
	}
}

func TestEditCancel(t *testing.T) {
	m := setupModel(t)
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m = newM.(Model)

	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = newM.(Model)
	if m.editing || m.done {
		t.Error("esc should return to the review screen without deciding")
	}
}

func TestEditRemovingAllScenesRejected(t *testing.T) {
	m := setupModel(t)
	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m = newM.(Model)

	m.editor.SetValue("  \n\n ")
	newM, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = newM.(Model)
	if m.done {
		t.Error("saving an empty edit must not close the review")
	}
	if m.editErr == nil {
		t.Error("expected an edit error to be shown")
	}
}

func TestViewRenders(t *testing.T) {
	m := setupModel(t)

	view := m.View()
	if view == "" {
		t.Error("expected non-empty view")
	}
	if !strings.Contains(view, "Why Caching Wins") {
		t.Error("expected view to contain the title")
	}
	if !strings.Contains(view, "/ 100") {
		t.Error("expected view to contain the total score")
	}
}

func TestExhaustedBanner(t *testing.T) {
	res, _ := score.Score(testScript())
	m := New(testScript(), res, true)
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = newM.(Model)

	if !strings.Contains(m.View(), "exhausted") {
		t.Error("expected exhausted banner in view")
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t)

	newM, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = newM.(Model)
	if !m.showHelp {
		t.Error("expected help to be shown")
	}

	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("expected help view to contain shortcuts")
	}
}
