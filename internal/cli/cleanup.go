package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shortsmith/shortsmith/internal/cleanup"
	"github.com/shortsmith/shortsmith/internal/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove scratch dirs, rotate bundles and logs, expire the cache",
	Args:  cobra.NoArgs,
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().Int("keep-bundles", cleanup.DefaultPolicy.KeepBundles, "output bundles to keep per channel")
	cleanupCmd.Flags().Int("keep-logs", cleanup.DefaultPolicy.KeepLogs, "log files to keep")
	cleanupCmd.Flags().Duration("cache-max-age", cleanup.DefaultPolicy.CacheMaxAge, "how long cached audio and clips survive")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	keepBundles, _ := cmd.Flags().GetInt("keep-bundles")
	keepLogs, _ := cmd.Flags().GetInt("keep-logs")
	cacheMaxAge, _ := cmd.Flags().GetDuration("cache-max-age")

	runner := cleanup.New(cfg.OutputDir, cfg.CacheDir, cfg.LogDir)
	runner.Policy = cleanup.Policy{
		KeepBundles: keepBundles,
		KeepLogs:    keepLogs,
		CacheMaxAge: cacheMaxAge,
	}

	rep, err := runner.Run()
	if err != nil {
		return err
	}
	fmt.Println(rep.String())
	return nil
}
