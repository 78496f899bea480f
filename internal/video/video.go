// Package video assembles scene clips, the voice track, music, and burned
// subtitles into the final 1080x1920 short using ffmpeg.
package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	outWidth  = 1080
	outHeight = 1920

	musicVolume = 0.16
)

// SceneInput pairs a stock clip with the scene's audio duration.
type SceneInput struct {
	ClipPath string
	Duration float64
}

// AssembleRequest describes one final render.
type AssembleRequest struct {
	Scenes       []SceneInput
	VoicePath    string
	MusicPath    string // optional
	SubtitlePath string // optional .srt, burned in
	Title        string // optional overlay on the first seconds
	OutPath      string
	WorkDir      string
}

// Assembler shells out to ffmpeg. Run replaces the command execution in
// tests.
type Assembler struct {
	Run  func(ctx context.Context, name string, args ...string) ([]byte, error)
	Logf func(format string, v ...any)
}

// NewAssembler returns an Assembler running real commands.
func NewAssembler() *Assembler {
	return &Assembler{
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// Assemble renders the final video: every clip is fitted to portrait and
// trimmed or looped to its scene duration, the segments are concatenated,
// the voice track is mixed over optional background music, and subtitles
// plus the title overlay are burned in.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) error {
	if len(req.Scenes) == 0 {
		return fmt.Errorf("video: no scenes to assemble")
	}
	if req.VoicePath == "" {
		return fmt.Errorf("video: no voice track")
	}
	if err := os.MkdirAll(req.WorkDir, 0o755); err != nil {
		return fmt.Errorf("video: workdir: %w", err)
	}

	segments := make([]string, len(req.Scenes))
	for i, scene := range req.Scenes {
		seg := filepath.Join(req.WorkDir, fmt.Sprintf("segment-%02d.mp4", i))
		if err := a.renderSegment(ctx, scene, seg); err != nil {
			return fmt.Errorf("video: segment %d: %w", i+1, err)
		}
		segments[i] = seg
	}

	silent := filepath.Join(req.WorkDir, "visual.mp4")
	if err := a.concat(ctx, segments, silent); err != nil {
		return err
	}
	return a.finalize(ctx, req, silent)
}

// renderSegment normalizes one clip to portrait and the scene duration.
// stream_loop covers clips shorter than the scene; -t trims the excess.
func (a *Assembler) renderSegment(ctx context.Context, scene SceneInput, outPath string) error {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,fps=30",
		outWidth, outHeight, outWidth, outHeight)
	args := []string{"-y",
		"-stream_loop", "-1", "-i", scene.ClipPath,
		"-t", fmt.Sprintf("%.2f", scene.Duration),
		"-vf", vf,
		"-an",
		"-c:v", "libx264", "-preset", "fast", "-pix_fmt", "yuv420p",
		outPath,
	}
	out, err := a.Run(ctx, "ffmpeg", args...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(out))
	}
	return nil
}

func (a *Assembler) concat(ctx context.Context, segments []string, outPath string) error {
	list := outPath + ".txt"
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "file '%s'\n", seg)
	}
	if err := os.WriteFile(list, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("video: concat list: %w", err)
	}
	out, err := a.Run(ctx, "ffmpeg", "-y",
		"-f", "concat", "-safe", "0", "-i", list,
		"-c", "copy", outPath)
	if err != nil {
		return fmt.Errorf("video: concat: %w: %s", err, tail(out))
	}
	return nil
}

// finalize mixes audio and burns overlays onto the concatenated visuals.
func (a *Assembler) finalize(ctx context.Context, req AssembleRequest, visualPath string) error {
	args := []string{"-y", "-i", visualPath, "-i", req.VoicePath}
	audioMap := "1:a"
	var filters []string

	if req.MusicPath != "" {
		args = append(args, "-stream_loop", "-1", "-i", req.MusicPath)
		filters = append(filters, fmt.Sprintf(
			"[2:a]volume=%.2f[bg];[1:a][bg]amix=inputs=2:duration=first:dropout_transition=2[mix]",
			musicVolume))
		audioMap = "[mix]"
	}

	var vf []string
	if req.SubtitlePath != "" {
		vf = append(vf, fmt.Sprintf("subtitles=%s:force_style='FontSize=14,Alignment=2,MarginV=60'",
			escapeFilterPath(req.SubtitlePath)))
	}
	if req.Title != "" {
		vf = append(vf, fmt.Sprintf(
			"drawtext=text='%s':fontsize=52:fontcolor=white:box=1:boxcolor=black@0.55:boxborderw=18:x=(w-text_w)/2:y=140:enable='between(t,0,3)'",
			escapeDrawText(req.Title)))
	}
	if len(vf) > 0 {
		if len(filters) > 0 {
			filters = append(filters, "[0:v]"+strings.Join(vf, ",")+"[v]")
			args = append(args, "-filter_complex", strings.Join(filters, ";"), "-map", "[v]")
		} else {
			args = append(args, "-vf", strings.Join(vf, ","), "-map", "0:v")
		}
	} else {
		if len(filters) > 0 {
			args = append(args, "-filter_complex", strings.Join(filters, ";"))
		}
		args = append(args, "-map", "0:v")
	}
	args = append(args, "-map", audioMap,
		"-c:v", "libx264", "-preset", "medium", "-pix_fmt", "yuv420p",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		req.OutPath)

	out, err := a.Run(ctx, "ffmpeg", args...)
	if err != nil {
		return fmt.Errorf("video: finalize: %w: %s", err, tail(out))
	}
	return nil
}

// Thumbnail grabs a frame near the middle of the video and overlays the
// title for upload thumbnails.
func (a *Assembler) Thumbnail(ctx context.Context, videoPath, title, outPath string) error {
	vf := fmt.Sprintf(
		"drawtext=text='%s':fontsize=64:fontcolor=white:box=1:boxcolor=black@0.6:boxborderw=24:x=(w-text_w)/2:y=(h-text_h)/2",
		escapeDrawText(title))
	out, err := a.Run(ctx, "ffmpeg", "-y",
		"-ss", "12", "-i", videoPath,
		"-frames:v", "1", "-vf", vf,
		"-q:v", "3", outPath)
	if err != nil {
		return fmt.Errorf("video: thumbnail: %w: %s", err, tail(out))
	}
	return nil
}

// escapeDrawText escapes the characters ffmpeg's drawtext treats specially.
func escapeDrawText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `%`, `\%`)
	return r.Replace(s)
}

func escapeFilterPath(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	return r.Replace(s)
}

func tail(out []byte) string {
	const n = 300
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return strings.TrimSpace(string(out))
}
