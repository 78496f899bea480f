package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shortsmith/shortsmith/internal/generate"
	"github.com/shortsmith/shortsmith/internal/history"
	"github.com/shortsmith/shortsmith/internal/review"
	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
	"github.com/shortsmith/shortsmith/internal/tts"
	"github.com/shortsmith/shortsmith/internal/video"
)

func testScript() script.Script {
	return script.Script{
		Title: "Why Phones Slow Down",
		Scenes: []script.Scene{
			{Text: "Your phone is secretly slowing itself down?", Keywords: []string{"phone", "battery"}, DurationEstimate: 5},
			{Text: "Every battery cycle chips away at peak power delivery.", Keywords: []string{"battery", "charge"}, DurationEstimate: 7},
			{Text: "Follow for more and check your battery health tonight.", Keywords: []string{"settings"}, DurationEstimate: 6},
		},
		TotalDuration: 18,
	}
}

type fakeSource struct {
	req generate.Request
	sc  script.Script
	err error
}

func (f *fakeSource) Generate(ctx context.Context, req generate.Request) (generate.Result, error) {
	f.req = req
	if f.err != nil {
		return generate.Result{}, f.err
	}
	return generate.Result{Script: f.sc, APICalls: 2}, nil
}

type fakeGate struct {
	got script.Script
	out *review.Outcome
	err error
}

func (f *fakeGate) Run(ctx context.Context, initial script.Script) (*review.Outcome, error) {
	f.got = initial
	return f.out, f.err
}

type fakeSynth struct{ calls int }

func (f *fakeSynth) SynthesizeScript(ctx context.Context, sc script.Script, outPath string) ([]tts.SceneAudio, error) {
	f.calls++
	if err := os.WriteFile(outPath, []byte("voice"), 0o644); err != nil {
		return nil, err
	}
	out := make([]tts.SceneAudio, len(sc.Scenes))
	for i := range sc.Scenes {
		out[i] = tts.SceneAudio{Path: outPath, Duration: float64(4 + i)}
	}
	return out, nil
}

type fakeMedia struct {
	queries [][]string
	used    []string
}

func (f *fakeMedia) FetchClip(ctx context.Context, keywords []string) (string, error) {
	f.queries = append(f.queries, keywords)
	id := fmt.Sprintf("clip-%d", len(f.queries))
	f.used = append(f.used, id)
	return "/cache/" + id + ".mp4", nil
}

func (f *fakeMedia) UsedClips() []string { return f.used }

type fakeAssembler struct {
	req    video.AssembleRequest
	thumbs int
}

func (f *fakeAssembler) Assemble(ctx context.Context, req video.AssembleRequest) error {
	f.req = req
	return os.WriteFile(req.OutPath, []byte("mp4"), 0o644)
}

func (f *fakeAssembler) Thumbnail(ctx context.Context, videoPath, title, outPath string) error {
	f.thumbs++
	return os.WriteFile(outPath, []byte("jpg"), 0o644)
}

type fakeHistory struct {
	runs     []history.Run
	clips    []string
	keywords []string
}

func (f *fakeHistory) RecentSignatures(ctx context.Context, channel, kind string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (f *fakeHistory) RecordRun(ctx context.Context, run history.Run, sc script.Script) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeHistory) MarkClipUsed(ctx context.Context, channel, clipID string) error {
	f.clips = append(f.clips, clipID)
	return nil
}

func (f *fakeHistory) MarkKeywords(ctx context.Context, channel string, keywords []string) error {
	f.keywords = append(f.keywords, keywords...)
	return nil
}

func newRunner(t *testing.T) (*Runner, *fakeSource, *fakeGate, *fakeMedia, *fakeAssembler, *fakeHistory) {
	t.Helper()
	sc := testScript()
	src := &fakeSource{sc: sc}
	gate := &fakeGate{out: &review.Outcome{
		Script:   sc,
		Result:   score.Result{Total: 84},
		Attempts: []review.Attempt{{Number: 1}, {Number: 2}},
		Rewrites: 1,
	}}
	media := &fakeMedia{}
	asm := &fakeAssembler{}
	hist := &fakeHistory{}
	r := &Runner{
		Source:    src,
		Gate:      gate,
		Synth:     &fakeSynth{},
		Media:     media,
		Assembler: asm,
		History:   hist,
		OutputDir: t.TempDir(),
		Logf:      t.Logf,
	}
	return r, src, gate, media, asm, hist
}

func TestRunProducesBundle(t *testing.T) {
	r, src, gate, media, asm, hist := newRunner(t)

	res, err := r.Run(context.Background(), Request{
		Channel:      "tech",
		Topic:        "phone batteries",
		LanguageMode: "english",
		MaxScenes:    6,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("expected a run ID")
	}
	if src.req.Topic != "phone batteries" || src.req.Channel != "tech" {
		t.Errorf("generate request not forwarded: %+v", src.req)
	}
	if gate.got.Title != "Why Phones Slow Down" {
		t.Errorf("gate received wrong script: %q", gate.got.Title)
	}
	if res.Score != 84 || res.Attempts != 2 || res.Rewrites != 1 {
		t.Errorf("outcome not carried: score=%d attempts=%d rewrites=%d", res.Score, res.Attempts, res.Rewrites)
	}

	// One clip per scene, matching the narration durations.
	if len(media.queries) != 3 {
		t.Fatalf("expected 3 clip fetches, got %d", len(media.queries))
	}
	if len(asm.req.Scenes) != 3 {
		t.Fatalf("expected 3 assemble scenes, got %d", len(asm.req.Scenes))
	}
	for i, s := range asm.req.Scenes {
		if want := float64(4 + i); s.Duration != want {
			t.Errorf("scene %d duration = %.1f, want %.1f", i, s.Duration, want)
		}
	}
	if asm.req.SubtitlePath == "" {
		t.Error("expected subtitles to be wired into assembly")
	}
	if asm.thumbs != 1 {
		t.Errorf("thumbnails rendered = %d, want 1", asm.thumbs)
	}

	for _, name := range []string{"final.mp4", "thumbnail.jpg", "script.json", "metadata.json"} {
		if _, err := os.Stat(filepath.Join(res.BundleDir, name)); err != nil {
			t.Errorf("bundle missing %s: %v", name, err)
		}
	}
	if !strings.HasPrefix(filepath.Base(res.BundleDir), "tech-") {
		t.Errorf("bundle dir %q not prefixed with channel", res.BundleDir)
	}

	if len(hist.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(hist.runs))
	}
	if hist.runs[0].Score != 84 || hist.runs[0].Channel != "tech" {
		t.Errorf("recorded run = %+v", hist.runs[0])
	}
	if len(hist.clips) != 3 {
		t.Errorf("expected 3 clips marked used, got %d", len(hist.clips))
	}
	if len(hist.keywords) == 0 {
		t.Error("expected keywords marked used")
	}
}

func TestRunScriptOnlySkipsProduction(t *testing.T) {
	r, _, _, media, asm, hist := newRunner(t)

	res, err := r.Run(context.Background(), Request{Channel: "tech", Topic: "ssd wear", ScriptOnly: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.VideoPath != "" || res.BundleDir != "" {
		t.Errorf("script-only run produced media: video=%q bundle=%q", res.VideoPath, res.BundleDir)
	}
	if len(media.queries) != 0 || asm.thumbs != 0 {
		t.Error("script-only run touched footage or assembly")
	}
	if len(hist.runs) != 1 {
		t.Fatalf("script-only run should still be recorded, got %d records", len(hist.runs))
	}
	if res.Metadata.Title == "" {
		t.Error("expected metadata bundle even for script-only run")
	}
}

func TestRunRejectedGateSurfacesError(t *testing.T) {
	r, _, gate, _, _, hist := newRunner(t)
	gate.out = nil
	gate.err = review.ErrRejected

	_, err := r.Run(context.Background(), Request{Channel: "tech", Topic: "ram timings"})
	if err == nil {
		t.Fatal("expected error from rejected gate")
	}
	if len(hist.runs) != 0 {
		t.Error("rejected run must not be recorded")
	}
}
