package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shortsmith/shortsmith/internal/config"
	"github.com/shortsmith/shortsmith/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent production runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringP("channel", "c", "", "only show runs for this channel")
	historyCmd.Flags().IntP("limit", "n", 20, "maximum runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer hist.Close()

	channel, _ := cmd.Flags().GetString("channel")
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := hist.RecentRuns(cmd.Context(), channel, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %-12s %3d/100  %d attempt(s)  %q\n",
			run.CreatedAt.Format("2006-01-02 15:04"), run.Channel, run.Score, run.Attempts, run.Title)
		if run.VideoPath != "" {
			fmt.Printf("%19s %s\n", "", run.VideoPath)
		}
	}
	return nil
}
