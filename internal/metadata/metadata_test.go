package metadata

import (
	"strings"
	"testing"

	"github.com/shortsmith/shortsmith/internal/script"
)

func sample() script.Script {
	return script.Script{
		Title: "Why Caching Wins",
		Scenes: []script.Scene{
			{Text: "What is the secret behind fast apps?", Keywords: []string{"server", "code"}},
			{Text: "Caching does the heavy lifting.", Keywords: []string{"server", "datacenter"}},
			{Text: "Follow for more performance tips.", Keywords: []string{"keyboard"}},
		},
	}
}

func TestBuildBundle(t *testing.T) {
	b := Build(sample(), "TechBytes", "web performance")

	if b.Title != "Why Caching Wins | TechBytes #shorts" {
		t.Errorf("Title = %q", b.Title)
	}
	if !strings.HasPrefix(b.Description, "What is the secret behind fast apps?") {
		t.Errorf("description should open with the hook:\n%s", b.Description)
	}
	if !strings.Contains(b.Description, "#shorts") {
		t.Errorf("description should carry hashtags:\n%s", b.Description)
	}
	if !strings.Contains(b.PinnedComment, "TechBytes") {
		t.Errorf("pinned comment = %q", b.PinnedComment)
	}
}

func TestTagsDedupedAndBounded(t *testing.T) {
	b := Build(sample(), "TechBytes", "web performance")
	seen := make(map[string]bool)
	for _, tag := range b.Tags {
		if seen[tag] {
			t.Errorf("duplicate tag %q", tag)
		}
		seen[tag] = true
	}
	if !seen["shorts"] || !seen["techbytes"] || !seen["performance"] || !seen["server"] {
		t.Errorf("expected core tags, got %v", b.Tags)
	}
	if len(b.Tags) > 15 {
		t.Errorf("too many tags: %d", len(b.Tags))
	}
	if len(b.Hashtags) > 5 {
		t.Errorf("too many hashtags: %d", len(b.Hashtags))
	}
	for _, h := range b.Hashtags {
		if !strings.HasPrefix(h, "#") || strings.Contains(h, " ") {
			t.Errorf("malformed hashtag %q", h)
		}
	}
}

func TestLongTitleTrimmed(t *testing.T) {
	sc := sample()
	sc.Title = strings.Repeat("Very Long Title Words ", 8)
	b := Build(sc, "TechBytes", "topic")
	if len(b.Title) > 100 {
		t.Errorf("title too long (%d): %q", len(b.Title), b.Title)
	}
	if !strings.HasSuffix(b.Title, "| TechBytes #shorts") {
		t.Errorf("channel suffix lost: %q", b.Title)
	}
}
