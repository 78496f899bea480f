// Package cli wires the shortsmith commands together.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "shortsmith",
	Short: "Automated YouTube Shorts production pipeline",
	Long: `shortsmith turns a channel profile and a topic into an upload-ready
short: it generates a script, scores it for retention, rewrites weak hooks,
holds the result at a human review gate, then renders narration, footage,
subtitles, and the final vertical video.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
