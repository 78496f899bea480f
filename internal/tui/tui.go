// Package tui implements the Bubble Tea review screen shown at the human
// gate: score breakdown, scenes, and approve/edit/reject controls.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shortsmith/shortsmith/internal/review"
	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

type viewMode int

const (
	viewScenes viewMode = iota
	viewJSON
)

// Model is the top-level Bubble Tea model for the review screen.
type Model struct {
	script    script.Script
	result    score.Result
	exhausted bool

	// UI state
	width  int
	height int

	scrollOffset int
	mode         viewMode
	showHelp     bool

	// Edit mode
	editing bool
	editor  textarea.Model

	// Rendered body lines for the current view mode
	lines []string

	// Outcome, read by the prompter after the program exits.
	decision review.Decision
	done     bool
	edited   script.Script
	editErr  error
}

// New creates the review model for one gate round.
func New(sc script.Script, res score.Result, exhausted bool) Model {
	m := Model{
		script:    sc,
		result:    res,
		exhausted: exhausted,
		decision:  review.DecisionRejected,
		editor:    textarea.New(),
	}
	m.updateLines()
	return m
}

func (m *Model) updateLines() {
	switch m.mode {
	case viewJSON:
		m.lines = renderJSON(m.script)
	default:
		m.lines = renderScenes(m.script)
	}
	if m.scrollOffset >= len(m.lines) {
		m.scrollOffset = 0
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(m.width - 6)
		m.editor.SetHeight(m.height - 8)
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit), key.Matches(msg, keys.Reject):
			m.decision = review.DecisionRejected
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, keys.Approve):
			m.decision = review.DecisionApproved
			m.done = true
			return m, tea.Quit

		case key.Matches(msg, keys.Edit):
			return m.enterEditMode()

		case key.Matches(msg, keys.Toggle):
			if m.mode == viewScenes {
				m.mode = viewJSON
			} else {
				m.mode = viewScenes
			}
			m.scrollOffset = 0
			m.updateLines()

		case key.Matches(msg, keys.Down):
			if m.scrollOffset < len(m.lines)-1 {
				m.scrollOffset++
			}

		case key.Matches(msg, keys.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

func (m Model) enterEditMode() (tea.Model, tea.Cmd) {
	ta := textarea.New()
	ta.SetValue(strings.Join(m.script.SceneTexts(), "\n"))
	ta.SetWidth(max(m.width-6, 40))
	ta.SetHeight(max(m.height-8, 8))
	ta.CharLimit = 0
	ta.Focus()
	m.editor = ta
	m.editing = true
	m.editErr = nil
	return m, textarea.Blink
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Save):
		edited, err := applyEdit(m.script, m.editor.Value())
		if err != nil {
			m.editErr = err
			return m, nil
		}
		m.edited = edited
		m.decision = review.DecisionEdit
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, keys.Cancel):
		m.editing = false
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.editing {
		return m.renderEditor()
	}

	header := titleStyle.Render(m.script.Title)
	if m.exhausted {
		header += "  " + exhaustedStyle.Render("rewrite budget exhausted, best attempt shown")
	}

	scorePanel := m.renderScorePanel()
	body := m.renderBody(m.height - lipgloss.Height(scorePanel) - 4)
	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, header, scorePanel, body, statusBar)
}

func (m Model) renderScorePanel() string {
	var b strings.Builder
	totalStyle := scoreBadStyle
	switch {
	case m.result.Total >= 80:
		totalStyle = scoreGoodStyle
	case m.result.Total >= 60:
		totalStyle = scoreWarnStyle
	}
	fmt.Fprintf(&b, "%s %s\n\n", signalNameStyle.Render("Retention score:"),
		totalStyle.Render(fmt.Sprintf("%d / 100", m.result.Total)))

	weakest := m.result.Weakest()
	for _, sig := range score.Signals() {
		name := signalNameStyle
		if sig == weakest {
			name = signalWeakStyle
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			name.Width(11).Render(sig.String()),
			renderBar(m.result.Sub(sig), sig.Max()),
			barEmptyStyle.Render(fmt.Sprintf("%2d/%d", m.result.Sub(sig), sig.Max())))
	}
	return scorePanelStyle.Width(max(m.width-2, 40)).Render(strings.TrimRight(b.String(), "\n"))
}

func renderBar(value, maximum int) string {
	const width = 20
	filled := 0
	if maximum > 0 {
		filled = value * width / maximum
	}
	if filled > width {
		filled = width
	}
	return barFillStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderBody(height int) string {
	if height < 3 {
		height = 3
	}
	end := m.scrollOffset + height - 2
	if end > len(m.lines) {
		end = len(m.lines)
	}
	var b strings.Builder
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(m.lines[i])
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return scenePanelStyle.Width(max(m.width-2, 40)).Height(height).Render(b.String())
}

func (m Model) renderStatusBar() string {
	mode := "scenes"
	if m.mode == viewJSON {
		mode = "json"
	}
	left := fmt.Sprintf(" %d scenes  ~%ds", len(m.script.Scenes), m.script.TotalDuration)
	right := fmt.Sprintf("a approve  e edit  r reject  v %s  ? help ", mode)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderEditor() string {
	header := editHeaderStyle.Render("Edit scenes — one line per scene, C-s to save, esc to cancel")
	body := m.editor.View()
	if m.editErr != nil {
		body += "\n" + scoreBadStyle.Render(m.editErr.Error())
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("shortsmith review — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"a/y", "Approve the script"},
		{"e", "Edit scenes"},
		{"r/n", "Reject and stop the run"},
		{"v", "Toggle scenes/JSON view"},
		{"↑/k", "Scroll up"},
		{"↓/j", "Scroll down"},
		{"?", "Toggle this help"},
		{"q", "Quit (rejects)"},
	}
	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}
	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))
	return b.String()
}

// applyEdit rebuilds the script from the editor buffer, one scene per line.
// Keywords and tone carry over positionally; new lines derive their own.
func applyEdit(base script.Script, value string) (script.Script, error) {
	var texts []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			texts = append(texts, line)
		}
	}
	if len(texts) == 0 {
		return script.Script{}, fmt.Errorf("edit removed every scene")
	}
	out := script.Script{Title: base.Title}
	for i, text := range texts {
		scene := script.Scene{Text: text}
		if i < len(base.Scenes) {
			scene.Keywords = append([]string(nil), base.Scenes[i].Keywords...)
			scene.Tone = base.Scenes[i].Tone
		}
		out.Scenes = append(out.Scenes, scene)
	}
	return script.Normalize(out)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
