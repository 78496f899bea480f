package script

import (
	"errors"
	"strings"
	"testing"
)

func sampleScript() Script {
	return Script{
		Title: "Focus Tricks",
		Scenes: []Scene{
			{Text: "Wait... what is the one focus mistake everyone makes?", DurationEstimate: 6},
			{Text: "Most people start the day with the hardest task and burn out.", DurationEstimate: 8},
			{Text: "The fix is a two minute warm up before the real work.", DurationEstimate: 7},
			{Text: "Try it tomorrow and comment what changed.", DurationEstimate: 5},
		},
		TotalDuration: 26,
	}
}

func TestValidate(t *testing.T) {
	if err := sampleScript().Validate(); err != nil {
		t.Fatalf("valid script rejected: %v", err)
	}

	empty := Script{}
	if err := empty.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for empty script, got %v", err)
	}

	blank := sampleScript()
	blank.Scenes[2].Text = "   "
	if err := blank.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for blank scene, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := sampleScript()
	orig.Scenes[0].Keywords = []string{"focus"}

	cp := orig.Clone()
	cp.Scenes[0].Text = "changed"
	cp.Scenes[0].Keywords[0] = "changed"

	if orig.Scenes[0].Text == "changed" {
		t.Error("clone shares scene slice with original")
	}
	if orig.Scenes[0].Keywords[0] == "changed" {
		t.Error("clone shares keyword slice with original")
	}
}

func TestWithHook(t *testing.T) {
	orig := sampleScript()
	got := orig.WithHook("New hook line?")

	if got.Hook() != "New hook line?" {
		t.Errorf("hook not replaced: %q", got.Hook())
	}
	if orig.Hook() == got.Hook() {
		t.Error("WithHook mutated the original")
	}
	if len(got.Scenes) != len(orig.Scenes) {
		t.Errorf("scene count changed: %d != %d", len(got.Scenes), len(orig.Scenes))
	}
}

func TestSignature(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Wait... The SECRET truth!", "wait the secret truth"},
		{"  spaced   out  ", "spaced out"},
		{"100% sure?", "100 sure"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Signature(c.in); got != c.want {
			t.Errorf("Signature(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDeriveKeywords(t *testing.T) {
	got := DeriveKeywords("The morning routine decides your whole output", []string{"focus"})
	if len(got) == 0 || len(got) > 4 {
		t.Fatalf("expected 1-4 keywords, got %v", got)
	}
	for _, k := range got {
		if k != strings.ToLower(k) {
			t.Errorf("keyword not lowercased: %q", k)
		}
	}

	fallbackOnly := DeriveKeywords("a an it", []string{"habit", "focus"})
	if len(fallbackOnly) != 2 {
		t.Errorf("expected fallback keywords, got %v", fallbackOnly)
	}
}

func TestRebalanceDurations(t *testing.T) {
	s := sampleScript()
	target := TargetTotal(s.Scenes)
	scenes := RebalanceDurations(s.Scenes, target)

	total := 0
	for _, sc := range scenes {
		if sc.DurationEstimate < 4 || sc.DurationEstimate > 11 {
			t.Errorf("scene duration %d outside 4-11", sc.DurationEstimate)
		}
		total += sc.DurationEstimate
	}
	if total != target {
		t.Errorf("rebalanced total %d, want %d", total, target)
	}
}

func TestNormalize(t *testing.T) {
	raw := Script{
		Title: "  Raw   Title  ",
		Scenes: []Scene{
			{Text: "  Same   line  "},
			{Text: ""},
			{Text: "Same line"},
			{Text: "A different closing thought to wrap it up."},
		},
	}
	got, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.Title != "Raw Title" {
		t.Errorf("title not trimmed: %q", got.Title)
	}
	if len(got.Scenes) != 3 {
		t.Fatalf("expected 3 scenes after cleanup, got %d", len(got.Scenes))
	}
	if got.Scenes[0].Text != "Same line" {
		t.Errorf("whitespace not collapsed: %q", got.Scenes[0].Text)
	}
	if strings.EqualFold(got.Scenes[0].Text, got.Scenes[1].Text) {
		t.Error("duplicate scene text survived normalization")
	}
	if got.TotalDuration < MinTotalDuration || got.TotalDuration > MaxTotalDuration {
		t.Errorf("total duration %d outside bounds", got.TotalDuration)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("normalized script invalid: %v", err)
	}

	if _, err := Normalize(Script{Scenes: []Scene{{Text: "   "}}}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for all-blank scenes, got %v", err)
	}
}
