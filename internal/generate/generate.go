// Package generate produces candidate Shorts scripts, either through a
// structured LLM completion or from the built-in channel phrase banks.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shortsmith/shortsmith/internal/llm"
	"github.com/shortsmith/shortsmith/internal/script"
)

// ErrNoFreshMaterial is returned when every bank line for a channel has a
// recently used signature and no LLM client is available to produce new ones.
var ErrNoFreshMaterial = errors.New("generate: no fresh material for channel")

// Request describes one script generation call.
type Request struct {
	Channel      string
	Topic        string
	LanguageMode string
	PromptText   string
	MaxScenes    int
}

// Result carries the generated script plus bookkeeping for the run history.
type Result struct {
	Script   script.Script
	APICalls int
	// FromBank is true when the script came from the offline phrase banks.
	FromBank bool
}

// Source turns requests into scripts. A nil Client makes it fully offline.
type Source struct {
	Client        *llm.Client
	BlockedHooks  map[string]bool
	BlockedScenes map[string]bool
	Logf          func(format string, v ...any)
}

type llmScene struct {
	Text     string   `json:"text" jsonschema_description:"Spoken narration for the scene, one or two sentences"`
	Keywords []string `json:"keywords" jsonschema_description:"Two to four stock footage search keywords"`
	Tone     string   `json:"tone" jsonschema_description:"Delivery tone, e.g. energetic, calm, dramatic"`
}

type llmScript struct {
	Title  string     `json:"title" jsonschema_description:"Video title, under 100 characters"`
	Scenes []llmScene `json:"scenes" jsonschema_description:"Ordered scenes, the first one is the hook"`
}

var scriptSchema = llm.Schema[llmScript]()

// Generate builds a script for the request. When an LLM client is configured
// it asks for a structured script first and falls back to the channel banks
// on failure; blocked hook and scene signatures are filtered in both paths.
func (s *Source) Generate(ctx context.Context, req Request) (Result, error) {
	if req.MaxScenes <= 0 {
		req.MaxScenes = 6
	}
	if s.Client != nil {
		out, err := s.fromLLM(ctx, req)
		if err == nil {
			return out, nil
		}
		s.logf("script generation via LLM failed, using channel bank: %v", err)
	}
	sc, err := s.fromBank(req)
	if err != nil {
		return Result{}, err
	}
	return Result{Script: sc, FromBank: true}, nil
}

func (s *Source) fromLLM(ctx context.Context, req Request) (Result, error) {
	prompt := s.buildPrompt(req)
	raw, err := llm.Structured[llmScript](ctx, s.Client,
		"You write scripts for vertical short-form videos. Scene one must hook the viewer in under 14 words.",
		prompt, scriptSchema)
	if err != nil {
		return Result{}, err
	}
	sc := script.Script{Title: raw.Title}
	for _, ls := range raw.Scenes {
		if len(sc.Scenes) >= req.MaxScenes {
			break
		}
		text := strings.TrimSpace(ls.Text)
		if text == "" || s.BlockedScenes[script.Signature(text)] {
			continue
		}
		kw := ls.Keywords
		if len(kw) == 0 {
			kw = script.DeriveKeywords(text, script.TopicTokens(req.Topic))
		}
		tone := ls.Tone
		if tone == "" {
			tone = "energetic"
		}
		sc.Scenes = append(sc.Scenes, script.Scene{Text: text, Keywords: kw, Tone: tone})
	}
	if len(sc.Scenes) < 3 {
		return Result{}, fmt.Errorf("llm script too short after filtering: %d scenes", len(sc.Scenes))
	}
	if s.BlockedHooks[script.Signature(sc.Hook())] {
		return Result{}, errors.New("llm script hook matches a recently used hook")
	}
	if sc.Title == "" {
		sc.Title = titleCase(req.Topic)
	}
	sc, err = script.Normalize(sc)
	if err != nil {
		return Result{}, err
	}
	return Result{Script: sc, APICalls: 1}, nil
}

func (s *Source) buildPrompt(req Request) string {
	var b strings.Builder
	if req.PromptText != "" {
		b.WriteString(req.PromptText)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Channel: %s\nTopic: %s\nLanguage: %s\n", req.Channel, req.Topic, languageLine(req.LanguageMode))
	fmt.Fprintf(&b, "Write at most %d scenes. Target 35 to 65 seconds of narration total.\n", req.MaxScenes)
	b.WriteString("The last scene must end with a call to action (follow, save, comment or share).\n")
	if len(s.BlockedHooks) > 0 {
		b.WriteString("Do not reuse hooks from recent videos; open with a fresh angle.\n")
	}
	return b.String()
}

func languageLine(mode string) string {
	switch mode {
	case "hinglish":
		return "Hinglish (casual Hindi-English mix, Latin script)"
	case "hindi":
		return "Hindi, Latin script"
	default:
		return "English"
	}
}

// fromBank assembles a five scene script from the channel phrase bank,
// skipping lines whose signature appeared in recent history.
func (s *Source) fromBank(req Request) (script.Script, error) {
	bk := channelBank(req.Channel, req.Topic)
	hook := s.pick(bk.hooks, s.BlockedHooks)
	if hook == "" {
		return script.Script{}, fmt.Errorf("%w: %s", ErrNoFreshMaterial, req.Channel)
	}
	parts := []string{
		hook,
		s.pickOrFirst(bk.setup),
		s.pickOrFirst(bk.build),
		s.pickOrFirst(bk.fix),
		s.pickOrFirst(bk.twist),
		s.pickOrFirst(bk.cta),
	}
	if req.MaxScenes < len(parts) {
		// Keep the hook and the CTA, trim the middle.
		keep := parts[:req.MaxScenes-1]
		parts = append(keep, parts[len(parts)-1])
	}
	sc := script.Script{Title: fmt.Sprintf("%s | %s", titleCase(req.Topic), titleCase(req.Channel))}
	for _, text := range parts {
		sc.Scenes = append(sc.Scenes, script.Scene{
			Text:     text,
			Keywords: script.DeriveKeywords(text, script.TopicTokens(req.Topic)),
			Tone:     "energetic",
		})
	}
	return script.Normalize(sc)
}

// pick returns the first line whose signature is not blocked, or "".
func (s *Source) pick(lines []string, blocked map[string]bool) string {
	for _, line := range lines {
		if !blocked[script.Signature(line)] {
			return line
		}
	}
	return ""
}

func (s *Source) pickOrFirst(lines []string) string {
	if line := s.pick(lines, s.BlockedScenes); line != "" {
		return line
	}
	return lines[0]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}

func (s *Source) logf(format string, v ...any) {
	if s.Logf != nil {
		s.Logf(format, v...)
	}
}
