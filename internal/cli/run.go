package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shortsmith/shortsmith/internal/cleanup"
	"github.com/shortsmith/shortsmith/internal/config"
	"github.com/shortsmith/shortsmith/internal/generate"
	"github.com/shortsmith/shortsmith/internal/history"
	"github.com/shortsmith/shortsmith/internal/llm"
	"github.com/shortsmith/shortsmith/internal/media"
	"github.com/shortsmith/shortsmith/internal/pipeline"
	"github.com/shortsmith/shortsmith/internal/review"
	"github.com/shortsmith/shortsmith/internal/rewrite"
	"github.com/shortsmith/shortsmith/internal/tts"
	"github.com/shortsmith/shortsmith/internal/tui"
	"github.com/shortsmith/shortsmith/internal/video"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce one short for a channel",
	Long: `Run the full production pipeline for a channel: generate a script,
score it, rewrite weak hooks, hold it at the review gate, then render
narration, footage, subtitles, and the final video into the output bundle.

With --unattended the review gate auto-approves any script that clears the
channel's hook threshold and rejects the rest.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("channel", "c", "", "channel profile to produce for (required)")
	runCmd.Flags().StringP("topic", "t", "", "topic override; defaults to the next fresh channel topic")
	runCmd.Flags().String("music", "", "background music file to mix under the narration")
	runCmd.Flags().Bool("script-only", false, "stop after the review gate, skip audio and video")
	runCmd.Flags().Bool("unattended", false, "auto-approve at the review gate instead of opening the TUI")
	_ = runCmd.MarkFlagRequired("channel")

	// Stage logging goes to stderr; stdout carries the run summary.
	log.SetOutput(os.Stderr)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if ok, _ := cmd.Flags().GetBool("unattended"); ok {
		cfg.Unattended = true
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	channelName, _ := cmd.Flags().GetString("channel")
	channels, err := config.LoadChannels(cfg.ChannelsFn)
	if err != nil {
		return err
	}
	ch, err := config.FindChannel(channels, channelName)
	if err != nil {
		return err
	}

	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer hist.Close()

	ctx := cmd.Context()

	topicFlag, _ := cmd.Flags().GetString("topic")
	topic, err := pickTopic(ctx, hist, ch, topicFlag)
	if err != nil {
		return err
	}

	promptText, err := ch.PromptText()
	if err != nil {
		return err
	}

	runner, err := buildRunner(ctx, cfg, ch, hist, topic)
	if err != nil {
		return err
	}

	musicPath, _ := cmd.Flags().GetString("music")
	scriptOnly, _ := cmd.Flags().GetBool("script-only")

	res, err := runner.Run(ctx, pipeline.Request{
		Channel:      ch.Name,
		Topic:        topic,
		LanguageMode: ch.LanguageMode,
		PromptText:   promptText,
		MaxScenes:    ch.MaxScenes,
		MusicPath:    musicPath,
		ScriptOnly:   scriptOnly,
	})
	if errors.Is(err, review.ErrRejected) {
		fmt.Println("Run rejected at the review gate. Nothing was produced.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Run %s complete.\n", res.RunID)
	fmt.Printf("  %q scored %d/100 after %d attempt(s), %d rewrite(s)\n",
		res.Script.Title, res.Score, res.Attempts, res.Rewrites)
	if res.VideoPath != "" {
		fmt.Printf("  video:  %s\n", res.VideoPath)
		fmt.Printf("  bundle: %s\n", res.BundleDir)
	}

	// Clear this run's scratch directory and expired cache entries.
	rep, err := cleanup.New(cfg.OutputDir, cfg.CacheDir, cfg.LogDir).Run()
	if err != nil {
		log.Printf("cleanup after run: %v", err)
	} else if rep.BytesFreed > 0 {
		fmt.Printf("  cleanup: %s\n", rep.String())
	}
	return nil
}

// pickTopic resolves the topic for this run: an explicit override wins,
// otherwise the first channel topic outside the reuse cooldown.
func pickTopic(ctx context.Context, hist *history.Store, ch config.Channel, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if len(ch.Topics) == 0 {
		return "", fmt.Errorf("channel %q has no topics; pass --topic", ch.Name)
	}
	for _, topic := range ch.Topics {
		used, err := hist.TopicUsedRecently(ctx, ch.Name, topic)
		if err != nil {
			return "", err
		}
		if !used {
			return topic, nil
		}
	}
	return "", fmt.Errorf("all %d topics for channel %q were used recently; pass --topic", len(ch.Topics), ch.Name)
}

// buildRunner assembles the pipeline stages from config, channel profile,
// and history state.
func buildRunner(ctx context.Context, cfg config.Config, ch config.Channel, hist *history.Store, topic string) (*pipeline.Runner, error) {
	source := &generate.Source{Logf: log.Printf}
	var client *llm.Client
	if cfg.OpenAIKey != "" {
		client = llm.New(cfg.OpenAIKey, cfg.OpenAIModel)
		source.Client = client
	}

	var err error
	source.BlockedHooks, err = hist.RecentSignatures(ctx, ch.Name, "hook")
	if err != nil {
		return nil, err
	}
	source.BlockedScenes, err = hist.RecentSignatures(ctx, ch.Name, "scene")
	if err != nil {
		return nil, err
	}

	var provider rewrite.Provider
	if client != nil {
		provider = &rewrite.OpenAIProvider{Client: client}
	}
	rewriter := rewrite.New(provider, topic, ch.LanguageMode)
	for sig := range source.BlockedHooks {
		rewriter.Blocked[sig] = true
	}

	threshold := ch.Threshold(cfg.HookThreshold)
	var prompter review.Prompter
	if cfg.Unattended {
		prompter = &review.AutoPrompter{MinScore: threshold}
	} else {
		prompter = tui.NewPrompter()
	}
	gate := review.NewGate(review.Config{
		Threshold:  threshold,
		MaxRetries: cfg.MaxRetries,
	}, rewriter, prompter, nil)

	fetcher := media.New(cfg.PixabayKey, cfg.PexelsKey, filepath.Join(cfg.CacheDir, "clips"))
	fetcher.Skip = func(ctx context.Context, clipID string) bool {
		cooling, err := hist.ClipOnCooldown(ctx, ch.Name, clipID)
		if err != nil {
			log.Printf("clip cooldown check for %s: %v", clipID, err)
			return false
		}
		return cooling
	}
	fetcher.Logf = log.Printf

	synth := tts.New(cfg.ElevenLabsKey, ch.VoiceID, filepath.Join(cfg.CacheDir, "voice"))
	synth.Logf = log.Printf

	return &pipeline.Runner{
		Source:    source,
		Gate:      gate,
		Synth:     synth,
		Media:     fetcher,
		Assembler: video.NewAssembler(),
		History:   hist,
		OutputDir: cfg.OutputDir,
		Logf:      log.Printf,
	}, nil
}
