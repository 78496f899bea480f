package video

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// recorder captures every ffmpeg invocation instead of running it.
type recorder struct {
	calls [][]string
}

func (r *recorder) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return nil, nil
}

func argString(call []string) string { return strings.Join(call, " ") }

func TestAssembleCommandShape(t *testing.T) {
	rec := &recorder{}
	a := &Assembler{Run: rec.run}
	work := t.TempDir()

	req := AssembleRequest{
		Scenes: []SceneInput{
			{ClipPath: "clips/a.mp4", Duration: 6.5},
			{ClipPath: "clips/b.mp4", Duration: 8.0},
		},
		VoicePath:    "voice.mp3",
		MusicPath:    "music.mp3",
		SubtitlePath: filepath.Join(work, "subs.srt"),
		Title:        "Why Caching Wins",
		OutPath:      filepath.Join(work, "final.mp4"),
		WorkDir:      work,
	}
	if err := a.Assemble(context.Background(), req); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// Two segments, one concat, one finalize.
	if len(rec.calls) != 4 {
		t.Fatalf("ffmpeg calls = %d, want 4", len(rec.calls))
	}

	seg := argString(rec.calls[0])
	if !strings.Contains(seg, "scale=1080:1920") || !strings.Contains(seg, "crop=1080:1920") {
		t.Errorf("segment not fitted to portrait: %s", seg)
	}
	if !strings.Contains(seg, "-t 6.50") || !strings.Contains(seg, "-stream_loop -1") {
		t.Errorf("segment not trimmed/looped to scene duration: %s", seg)
	}

	concat := argString(rec.calls[2])
	if !strings.Contains(concat, "-f concat") {
		t.Errorf("third call should concat segments: %s", concat)
	}

	fin := argString(rec.calls[3])
	if !strings.Contains(fin, "volume=0.16") || !strings.Contains(fin, "amix=inputs=2") {
		t.Errorf("music not mixed at the expected volume: %s", fin)
	}
	if !strings.Contains(fin, "subtitles=") {
		t.Errorf("subtitles not burned in: %s", fin)
	}
	if !strings.Contains(fin, "drawtext=") {
		t.Errorf("title overlay missing: %s", fin)
	}
	if !strings.Contains(fin, "-shortest") {
		t.Errorf("output not bounded by the shortest stream: %s", fin)
	}
}

func TestAssembleWithoutOptionalInputs(t *testing.T) {
	rec := &recorder{}
	a := &Assembler{Run: rec.run}
	work := t.TempDir()

	req := AssembleRequest{
		Scenes:    []SceneInput{{ClipPath: "clips/a.mp4", Duration: 5}},
		VoicePath: "voice.mp3",
		OutPath:   filepath.Join(work, "final.mp4"),
		WorkDir:   work,
	}
	if err := a.Assemble(context.Background(), req); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	fin := argString(rec.calls[len(rec.calls)-1])
	if strings.Contains(fin, "amix") || strings.Contains(fin, "subtitles=") || strings.Contains(fin, "drawtext=") {
		t.Errorf("optional stages should be absent: %s", fin)
	}
	if !strings.Contains(fin, "-map 1:a") {
		t.Errorf("voice track not mapped: %s", fin)
	}
}

func TestAssembleRejectsEmptyInput(t *testing.T) {
	a := &Assembler{Run: (&recorder{}).run}
	if err := a.Assemble(context.Background(), AssembleRequest{VoicePath: "v.mp3", WorkDir: t.TempDir()}); err == nil {
		t.Error("expected error for zero scenes")
	}
	if err := a.Assemble(context.Background(), AssembleRequest{
		Scenes:  []SceneInput{{ClipPath: "a.mp4", Duration: 5}},
		WorkDir: t.TempDir(),
	}); err == nil {
		t.Error("expected error for missing voice track")
	}
}

func TestThumbnailCommand(t *testing.T) {
	rec := &recorder{}
	a := &Assembler{Run: rec.run}
	if err := a.Thumbnail(context.Background(), "final.mp4", "It's 100% true", "thumb.jpg"); err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	call := argString(rec.calls[0])
	if !strings.Contains(call, "-frames:v 1") {
		t.Errorf("thumbnail should grab a single frame: %s", call)
	}
	if !strings.Contains(call, `\'s 100\% true`) {
		t.Errorf("drawtext escaping wrong: %s", call)
	}
}

func TestEscapeDrawText(t *testing.T) {
	got := escapeDrawText(`50%: don't \ stop`)
	want := `50\%\: don\'t \\ stop`
	if got != want {
		t.Errorf("escapeDrawText = %q, want %q", got, want)
	}
}
