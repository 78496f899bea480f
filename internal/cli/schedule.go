package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/shortsmith/shortsmith/internal/config"
	"github.com/shortsmith/shortsmith/internal/history"
	"github.com/shortsmith/shortsmith/internal/pipeline"
	"github.com/shortsmith/shortsmith/internal/review"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule, unattended",
	Long: `Run the production pipeline for every configured channel on a cron
schedule. Scheduled runs are always unattended: the review gate approves any
script clearing the channel's threshold and rejects the rest.

The spec format is standard five-field cron, e.g. "0 9 * * *" for 09:00
daily.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("cron", "0 9 * * *", "cron spec for pipeline runs")
	scheduleCmd.Flags().StringSliceP("channel", "c", nil, "channels to produce for (default: all configured)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Unattended = true
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	channels, err := config.LoadChannels(cfg.ChannelsFn)
	if err != nil {
		return err
	}
	if names, _ := cmd.Flags().GetStringSlice("channel"); len(names) > 0 {
		picked := make([]config.Channel, 0, len(names))
		for _, name := range names {
			ch, err := config.FindChannel(channels, name)
			if err != nil {
				return err
			}
			picked = append(picked, ch)
		}
		channels = picked
	}
	if len(channels) == 0 {
		return fmt.Errorf("no channels configured in %s", cfg.ChannelsFn)
	}

	spec, _ := cmd.Flags().GetString("cron")
	c := cron.New()
	_, err = c.AddFunc(spec, func() {
		ctx := cmd.Context()
		for _, ch := range channels {
			if err := scheduledRun(ctx, cfg, ch); err != nil {
				log.Printf("scheduled run for %s failed: %v", ch.Name, err)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("cron spec %q: %w", spec, err)
	}

	log.Printf("scheduler started: %q across %d channel(s)", spec, len(channels))
	c.Run()
	return nil
}

// scheduledRun produces one short for a channel with a fresh history handle,
// so a failed run cannot poison the next one.
func scheduledRun(ctx context.Context, cfg config.Config, ch config.Channel) error {
	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer hist.Close()

	topic, err := pickTopic(ctx, hist, ch, "")
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

	res, err := runner.Run(ctx, pipeline.Request{
		Channel:      ch.Name,
		Topic:        topic,
		LanguageMode: ch.LanguageMode,
		PromptText:   promptText,
		MaxScenes:    ch.MaxScenes,
	})
	if errors.Is(err, review.ErrRejected) {
		log.Printf("scheduled run for %s: script below threshold, rejected", ch.Name)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("scheduled run for %s: %q scored %d/100, bundle %s",
		ch.Name, res.Script.Title, res.Score, res.BundleDir)
	return nil
}
