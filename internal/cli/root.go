package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "convocheck",
	Short: "Integration-test harness for AI companion backends",
	Long: "Runs declarative suites of HTTP checks against a companion backend —\n" +
		"conversation, story generation, voice, profiles, safety — and scores the\n" +
		"responses with heuristic predicates instead of exact matching.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
