package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shortsmith/shortsmith/internal/score"
	"github.com/shortsmith/shortsmith/internal/script"
)

var checkCmd = &cobra.Command{
	Use:   "check <script.json>",
	Short: "Score a script file and output a retention report (non-interactive)",
	Long: `Score a script JSON file against the retention heuristics and print
the per-signal breakdown. Useful for iterating on scripts by hand and for
gating in automation.

Exit codes:
  0 — score meets the threshold
  1 — score below the threshold`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	checkCmd.Flags().Int("threshold", 70, "minimum passing score")
}

func runCheck(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var sc script.Script
	if err := json.Unmarshal(raw, &sc); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	normalized, err := script.Normalize(sc)
	if err != nil {
		return err
	}

	res, err := score.Score(normalized)
	if err != nil {
		return err
	}

	threshold, _ := cmd.Flags().GetInt("threshold")
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		err = checkJSON(normalized, res, threshold)
	default:
		err = checkText(normalized, res, threshold)
	}
	if err != nil {
		return err
	}

	if res.Total < threshold {
		os.Exit(1)
	}
	return nil
}

func checkText(sc script.Script, res score.Result, threshold int) error {
	fmt.Printf("%q — %d scene(s), ~%ds\n", sc.Title, len(sc.Scenes), sc.TotalDuration)
	fmt.Printf("Score: %d/100 (threshold %d)\n\n", res.Total, threshold)

	weakest := res.Weakest()
	for _, s := range score.Signals() {
		marker := "  "
		if s == weakest {
			marker = "! "
		}
		fmt.Printf("  %s%-10s %2d/%d\n", marker, s, res.Sub(s), s.Max())
	}
	fmt.Println()

	if res.Total >= threshold {
		fmt.Println("PASS")
	} else {
		fmt.Printf("FAIL — weakest signal: %s\n", weakest)
	}
	return nil
}

func checkJSON(sc script.Script, res score.Result, threshold int) error {
	out := struct {
		Title     string       `json:"title"`
		Scenes    int          `json:"scenes"`
		Duration  int          `json:"total_duration"`
		Result    score.Result `json:"result"`
		Weakest   string       `json:"weakest"`
		Threshold int          `json:"threshold"`
		Pass      bool         `json:"pass"`
	}{
		Title:     sc.Title,
		Scenes:    len(sc.Scenes),
		Duration:  sc.TotalDuration,
		Result:    res,
		Weakest:   res.Weakest().String(),
		Threshold: threshold,
		Pass:      res.Total >= threshold,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
