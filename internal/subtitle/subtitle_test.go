package subtitle

import (
	"strings"
	"testing"
	"time"

	"github.com/shortsmith/shortsmith/internal/script"
)

func TestTimelineCoversEachSceneWindow(t *testing.T) {
	sc := script.Script{
		Title: "t",
		Scenes: []script.Scene{
			{Text: "Short hook line."},
			{Text: "This is a much longer scene with enough words to be split into several caption chunks for readability."},
		},
	}
	cues, err := Timeline(sc, []float64{4.0, 10.0})
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(cues) < 3 {
		t.Fatalf("cues = %d, want the long scene split", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 4*time.Second {
		t.Errorf("first cue window = %v..%v", cues[0].Start, cues[0].End)
	}
	// Second scene starts exactly where the first audio ends.
	if cues[1].Start != 4*time.Second {
		t.Errorf("second scene starts at %v, want 4s", cues[1].Start)
	}
	last := cues[len(cues)-1]
	if last.End != 14*time.Second {
		t.Errorf("last cue ends at %v, want 14s", last.End)
	}
	for i, c := range cues {
		if c.Index != i+1 {
			t.Errorf("cue %d has index %d", i, c.Index)
		}
		if c.End <= c.Start {
			t.Errorf("cue %d has empty window %v..%v", i, c.Start, c.End)
		}
	}
}

func TestTimelineRejectsMismatch(t *testing.T) {
	sc := script.Script{Scenes: []script.Scene{{Text: "a"}, {Text: "b"}}}
	if _, err := Timeline(sc, []float64{3.0}); err == nil {
		t.Fatal("expected error for duration count mismatch")
	}
}

func TestSRTFormat(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 0, End: 2500 * time.Millisecond, Text: "Hello there"},
		{Index: 2, Start: 2500 * time.Millisecond, End: 61*time.Second + 40*time.Millisecond, Text: "Line one\nLine two"},
	}
	got := SRT(cues)
	want := "1\n00:00:00,000 --> 00:00:02,500\nHello there\n\n" +
		"2\n00:00:02,500 --> 00:01:01,040\nLine one\nLine two\n\n"
	if got != want {
		t.Errorf("SRT mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWrapKeepsLinesShort(t *testing.T) {
	text := "a reasonably long caption chunk that would not fit on one phone width line"
	for _, line := range strings.Split(wrap(text), "\n") {
		if len(line) > maxLineRunes {
			t.Errorf("line too long (%d): %q", len(line), line)
		}
	}
}

func TestSplitChunksMergesOrphan(t *testing.T) {
	// 10 words: would split 8+2, the 2-word orphan merges back.
	text := "one two three four five six seven eight nine ten"
	chunks := splitChunks(text)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1 after orphan merge: %v", len(chunks), chunks)
	}
}
