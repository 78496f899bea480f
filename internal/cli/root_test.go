package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, want := range []string{"run", "check", "serve", "schedule", "history", "cleanup", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestRunCommandRequiresChannel(t *testing.T) {
	if runCmd.Flags().Lookup("channel") == nil {
		t.Fatal("run command missing --channel flag")
	}
	required, ok := runCmd.Flags().Lookup("channel").Annotations[cobra.BashCompOneRequiredFlag]
	if !ok || len(required) == 0 || required[0] != "true" {
		t.Error("--channel should be a required flag")
	}
}

func TestCheckCommandExpectsOneArg(t *testing.T) {
	if err := checkCmd.Args(checkCmd, []string{}); err == nil {
		t.Error("check should reject zero arguments")
	}
	if err := checkCmd.Args(checkCmd, []string{"a.json", "b.json"}); err == nil {
		t.Error("check should reject two arguments")
	}
	if err := checkCmd.Args(checkCmd, []string{"script.json"}); err != nil {
		t.Errorf("check should accept one argument: %v", err)
	}
}

func TestVersionOutput(t *testing.T) {
	// version vars are set via ldflags; in tests they have their defaults
	if version != "dev" {
		t.Errorf("expected default version %q, got %q", "dev", version)
	}
}
