package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shortsmith/shortsmith/internal/script"
)

// renderScenes produces the body lines for the scene list view.
func renderScenes(sc script.Script) []string {
	var lines []string
	for i, scene := range sc.Scenes {
		idx := sceneIndexStyle.Render(fmt.Sprintf("%d.", i+1))
		text := sceneLineStyle.Render(scene.Text)
		if i == 0 {
			text = hookLineStyle.Render(scene.Text)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, idx, " ", text))

		meta := fmt.Sprintf("~%ds", scene.DurationEstimate)
		if scene.Tone != "" {
			meta += "  " + toneStyle.Render(scene.Tone)
		}
		if len(scene.Keywords) > 0 {
			meta += "  " + keywordStyle.Render(strings.Join(scene.Keywords, ", "))
		}
		lines = append(lines, "     "+helpBarStyle.Render(meta))
	}
	return lines
}

// renderJSON produces syntax-highlighted lines of the script's JSON form.
func renderJSON(sc script.Script) []string {
	raw, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return []string{"marshal error: " + err.Error()}
	}
	lines := strings.Split(string(raw), "\n")
	highlighted := highlightLines("script.json", lines)

	out := make([]string, len(highlighted))
	for i, hl := range highlighted {
		var b strings.Builder
		for _, tok := range hl.tokens {
			if tok.color == "" {
				b.WriteString(tok.text)
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.color)).Render(tok.text))
		}
		out[i] = b.String()
	}
	return out
}
