package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/convocheck/internal/history"
	"github.com/ppiankov/convocheck/internal/report"
)

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(history.DefaultPath())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		fmt.Printf("%-5s %-20s %-12s %-24s %8s %s\n", "ID", "STARTED", "SUITE", "STATE", "RATE", "P/F/E/S")
		for _, r := range runs {
			fmt.Printf("%-5d %-20s %-12s %-24s %7.1f%% %d/%d/%d/%d\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Suite, r.State,
				r.SuccessRate, r.Passed, r.Failed, r.Errored, r.Skipped)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the full report of one past run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}

		store, err := history.Open(history.DefaultPath())
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := store.Get(id)
		if err != nil {
			return err
		}
		fmt.Print(report.FormatText(rep))
		return nil
	},
}
