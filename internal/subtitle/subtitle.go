// Package subtitle builds a caption timeline from scene audio durations and
// serializes it as SRT.
package subtitle

import (
	"fmt"
	"strings"
	"time"

	"github.com/shortsmith/shortsmith/internal/script"
)

// Cue is one subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// maxLineRunes wraps caption lines so burned-in subtitles fit a phone screen.
const maxLineRunes = 38

// Timeline positions each scene's narration over its measured audio duration,
// splitting long narration into multiple cues inside the scene window.
func Timeline(sc script.Script, durations []float64) ([]Cue, error) {
	if len(durations) != len(sc.Scenes) {
		return nil, fmt.Errorf("subtitle: %d durations for %d scenes", len(durations), len(sc.Scenes))
	}
	var cues []Cue
	cursor := time.Duration(0)
	for i, scene := range sc.Scenes {
		window := time.Duration(durations[i] * float64(time.Second))
		if window <= 0 {
			return nil, fmt.Errorf("subtitle: scene %d has non-positive duration", i+1)
		}
		chunks := splitChunks(scene.Text)
		per := window / time.Duration(len(chunks))
		for j, chunk := range chunks {
			start := cursor + time.Duration(j)*per
			end := start + per
			if j == len(chunks)-1 {
				end = cursor + window
			}
			cues = append(cues, Cue{
				Index: len(cues) + 1,
				Start: start,
				End:   end,
				Text:  wrap(chunk),
			})
		}
		cursor += window
	}
	return cues, nil
}

// splitChunks breaks narration at sentence boundaries, keeping chunks short
// enough to read at a glance.
func splitChunks(text string) []string {
	words := strings.Fields(text)
	const perChunk = 8
	if len(words) <= perChunk {
		return []string{strings.Join(words, " ")}
	}
	var out []string
	for start := 0; start < len(words); start += perChunk {
		end := start + perChunk
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
	}
	// Avoid a trailing one or two word orphan cue.
	if len(out) >= 2 {
		last := strings.Fields(out[len(out)-1])
		if len(last) <= 2 {
			out[len(out)-2] += " " + out[len(out)-1]
			out = out[:len(out)-1]
		}
	}
	return out
}

func wrap(text string) string {
	words := strings.Fields(text)
	var lines []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 && cur.Len()+1+len(w) > maxLineRunes {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return strings.Join(lines, "\n")
}

// SRT serializes cues in SubRip format.
func SRT(cues []Cue) string {
	var b strings.Builder
	for _, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", c.Index, stamp(c.Start), stamp(c.End), c.Text)
	}
	return b.String()
}

func stamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	ms := (d - s*time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
