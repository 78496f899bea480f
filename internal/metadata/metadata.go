// Package metadata builds the upload metadata bundle for a finished short.
package metadata

import (
	"fmt"
	"strings"

	"github.com/shortsmith/shortsmith/internal/script"
)

// Bundle is everything the uploader needs besides the video file.
type Bundle struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	Hashtags      []string `json:"hashtags"`
	PinnedComment string   `json:"pinned_comment"`
}

const (
	maxTitleLen = 100
	maxTags     = 15
)

// Build derives the bundle from the final script and channel identity.
func Build(sc script.Script, channel, topic string) Bundle {
	title := seoTitle(sc.Title, channel)
	tags := buildTags(sc, channel, topic)
	hashtags := buildHashtags(tags)

	var desc strings.Builder
	desc.WriteString(sc.Hook())
	desc.WriteString("\n\n")
	fmt.Fprintf(&desc, "Today's short: %s.\n", strings.TrimSpace(topic))
	desc.WriteString("Follow for a new one every day.\n\n")
	desc.WriteString(strings.Join(hashtags, " "))

	return Bundle{
		Title:         title,
		Description:   desc.String(),
		Tags:          tags,
		Hashtags:      hashtags,
		PinnedComment: fmt.Sprintf("Which part surprised you? Comment below and follow %s for tomorrow's short.", channel),
	}
}

func seoTitle(title, channel string) string {
	title = strings.TrimSpace(title)
	out := fmt.Sprintf("%s | %s #shorts", title, channel)
	if len(out) <= maxTitleLen {
		return out
	}
	// Trim the script title first; the channel and #shorts tag stay.
	overflow := len(out) - maxTitleLen
	if overflow < len(title) {
		title = strings.TrimSpace(title[:len(title)-overflow])
		return fmt.Sprintf("%s | %s #shorts", title, channel)
	}
	return out[:maxTitleLen]
}

func buildTags(sc script.Script, channel, topic string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] || len(out) >= maxTags {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}
	add("shorts")
	add(channel)
	for _, tok := range script.TopicTokens(topic) {
		add(tok)
	}
	for _, kw := range sc.AllKeywords() {
		add(kw)
	}
	return out
}

func buildHashtags(tags []string) []string {
	n := len(tags)
	if n > 5 {
		n = 5
	}
	out := make([]string, 0, n)
	for _, t := range tags[:n] {
		out = append(out, "#"+strings.ReplaceAll(t, " ", ""))
	}
	return out
}
