// Package pipeline orchestrates one full short production run: script
// generation, the scored review gate, voice synthesis, footage, assembly,
// and history bookkeeping.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/shortsmith/shortsmith/internal/generate"
	"github.com/shortsmith/shortsmith/internal/history"
	"github.com/shortsmith/shortsmith/internal/metadata"
	"github.com/shortsmith/shortsmith/internal/review"
	"github.com/shortsmith/shortsmith/internal/script"
	"github.com/shortsmith/shortsmith/internal/subtitle"
	"github.com/shortsmith/shortsmith/internal/tts"
	"github.com/shortsmith/shortsmith/internal/video"
)

// ScriptSource produces candidate scripts.
type ScriptSource interface {
	Generate(ctx context.Context, req generate.Request) (generate.Result, error)
}

// Gate runs the scored review loop and returns the accepted outcome.
type Gate interface {
	Run(ctx context.Context, initial script.Script) (*review.Outcome, error)
}

// Synthesizer renders narration audio.
type Synthesizer interface {
	SynthesizeScript(ctx context.Context, sc script.Script, outPath string) ([]tts.SceneAudio, error)
}

// MediaFetcher finds stock clips for scene keywords.
type MediaFetcher interface {
	FetchClip(ctx context.Context, keywords []string) (string, error)
	UsedClips() []string
}

// Assembler renders the final video and thumbnail.
type Assembler interface {
	Assemble(ctx context.Context, req video.AssembleRequest) error
	Thumbnail(ctx context.Context, videoPath, title, outPath string) error
}

// History persists run records and recency data.
type History interface {
	RecentSignatures(ctx context.Context, channel, kind string) (map[string]bool, error)
	RecordRun(ctx context.Context, run history.Run, sc script.Script) error
	MarkClipUsed(ctx context.Context, channel, clipID string) error
	MarkKeywords(ctx context.Context, channel string, keywords []string) error
}

// Request parameterizes one run.
type Request struct {
	Channel      string
	Topic        string
	LanguageMode string
	PromptText   string
	MaxScenes    int
	MusicPath    string

	// ScriptOnly stops after the review gate: no audio, footage, or video.
	ScriptOnly bool
}

// Result summarizes a completed run.
type Result struct {
	RunID     string
	Script    script.Script
	Score     int
	Attempts  int
	Rewrites  int
	APICalls  int
	Exhausted bool
	BundleDir string
	VideoPath string
	Thumbnail string
	Metadata  metadata.Bundle
}

// Runner wires the stages together. Every collaborator is an interface so
// tests can run the whole pipeline without network, ffmpeg, or a terminal.
type Runner struct {
	Source    ScriptSource
	Gate      Gate
	Synth     Synthesizer
	Media     MediaFetcher
	Assembler Assembler
	History   History

	OutputDir string
	Logf      func(format string, v ...any)
}

// Run executes the pipeline for one channel/topic.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	r.logf("run %s: channel=%s topic=%q", runID, req.Channel, req.Topic)

	sc, apiCalls, err := r.generateScript(ctx, req)
	if err != nil {
		return nil, err
	}

	outcome, err := r.Gate.Run(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("pipeline: review gate: %w", err)
	}
	r.logf("run %s: accepted script %q at %d/100 after %d attempt(s)",
		runID, outcome.Script.Title, outcome.Result.Total, len(outcome.Attempts))

	res := &Result{
		RunID:     runID,
		Script:    outcome.Script,
		Score:     outcome.Result.Total,
		Attempts:  len(outcome.Attempts),
		Rewrites:  outcome.Rewrites,
		APICalls:  apiCalls,
		Exhausted: outcome.Exhausted,
		Metadata:  metadata.Build(outcome.Script, req.Channel, req.Topic),
	}

	if req.ScriptOnly {
		if err := r.record(ctx, req, res); err != nil {
			return nil, err
		}
		return res, nil
	}

	if err := r.produce(ctx, req, res); err != nil {
		return nil, err
	}
	if err := r.record(ctx, req, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) generateScript(ctx context.Context, req Request) (script.Script, int, error) {
	genReq := generate.Request{
		Channel:      req.Channel,
		Topic:        req.Topic,
		LanguageMode: req.LanguageMode,
		PromptText:   req.PromptText,
		MaxScenes:    req.MaxScenes,
	}
	out, err := r.Source.Generate(ctx, genReq)
	if err != nil {
		return script.Script{}, 0, fmt.Errorf("pipeline: generate script: %w", err)
	}
	return out.Script, out.APICalls, nil
}

// produce renders everything downstream of the approved script into the
// run's bundle directory.
func (r *Runner) produce(ctx context.Context, req Request, res *Result) error {
	bundle := filepath.Join(r.OutputDir, fmt.Sprintf("%s-%s", req.Channel, res.RunID))
	scratch := filepath.Join(r.OutputDir, "scratch-"+res.RunID)
	for _, dir := range []string{bundle, scratch} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pipeline: create %s: %w", dir, err)
		}
	}
	res.BundleDir = bundle

	voicePath := filepath.Join(scratch, "voice.mp3")
	audios, err := r.Synth.SynthesizeScript(ctx, res.Script, voicePath)
	if err != nil {
		return fmt.Errorf("pipeline: voice: %w", err)
	}

	durations := make([]float64, len(audios))
	scenes := make([]video.SceneInput, len(audios))
	for i, a := range audios {
		durations[i] = a.Duration
		clip, err := r.Media.FetchClip(ctx, res.Script.Scenes[i].Keywords)
		if err != nil {
			return fmt.Errorf("pipeline: footage for scene %d: %w", i+1, err)
		}
		scenes[i] = video.SceneInput{ClipPath: clip, Duration: a.Duration}
	}

	cues, err := subtitle.Timeline(res.Script, durations)
	if err != nil {
		return fmt.Errorf("pipeline: subtitles: %w", err)
	}
	srtPath := filepath.Join(scratch, "captions.srt")
	if err := os.WriteFile(srtPath, []byte(subtitle.SRT(cues)), 0o644); err != nil {
		return fmt.Errorf("pipeline: write subtitles: %w", err)
	}

	videoPath := filepath.Join(bundle, "final.mp4")
	err = r.Assembler.Assemble(ctx, video.AssembleRequest{
		Scenes:       scenes,
		VoicePath:    voicePath,
		MusicPath:    req.MusicPath,
		SubtitlePath: srtPath,
		Title:        res.Script.Title,
		OutPath:      videoPath,
		WorkDir:      scratch,
	})
	if err != nil {
		return fmt.Errorf("pipeline: assemble: %w", err)
	}
	res.VideoPath = videoPath

	thumbPath := filepath.Join(bundle, "thumbnail.jpg")
	if err := r.Assembler.Thumbnail(ctx, videoPath, res.Script.Title, thumbPath); err != nil {
		r.logf("run %s: thumbnail failed: %v", res.RunID, err)
	} else {
		res.Thumbnail = thumbPath
	}

	if err := r.writeBundle(res); err != nil {
		return err
	}
	return nil
}

// writeBundle stores the script and upload metadata next to the video.
func (r *Runner) writeBundle(res *Result) error {
	files := map[string]any{
		"script.json":   res.Script,
		"metadata.json": res.Metadata,
	}
	for name, v := range files {
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("pipeline: marshal %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(res.BundleDir, name), raw, 0o644); err != nil {
			return fmt.Errorf("pipeline: write %s: %w", name, err)
		}
	}
	return nil
}

func (r *Runner) record(ctx context.Context, req Request, res *Result) error {
	if r.History == nil {
		return nil
	}
	// Stages that talk to paid providers expose their request counts.
	for _, stage := range []any{r.Synth, r.Media} {
		if c, ok := stage.(interface{ Calls() int }); ok {
			res.APICalls += c.Calls()
		}
	}
	run := history.Run{
		ID:        res.RunID,
		Channel:   req.Channel,
		Topic:     req.Topic,
		Title:     res.Script.Title,
		Score:     res.Score,
		Attempts:  res.Attempts,
		Rewrites:  res.Rewrites,
		APICalls:  res.APICalls,
		VideoPath: res.VideoPath,
	}
	if err := r.History.RecordRun(ctx, run, res.Script); err != nil {
		return fmt.Errorf("pipeline: record run: %w", err)
	}
	if r.Media != nil {
		for _, clip := range r.Media.UsedClips() {
			if err := r.History.MarkClipUsed(ctx, req.Channel, clip); err != nil {
				return fmt.Errorf("pipeline: mark clip: %w", err)
			}
		}
	}
	if err := r.History.MarkKeywords(ctx, req.Channel, res.Script.AllKeywords()); err != nil {
		return fmt.Errorf("pipeline: mark keywords: %w", err)
	}
	return nil
}

func (r *Runner) logf(format string, v ...any) {
	if r.Logf != nil {
		r.Logf(format, v...)
		return
	}
	log.Printf(format, v...)
}
