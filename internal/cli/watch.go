package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/convocheck/internal/config"
	"github.com/ppiankov/convocheck/internal/report"
	"github.com/ppiankov/convocheck/internal/suite"
	"github.com/ppiankov/convocheck/internal/watch"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&runBaseURL, "base-url", "", "Backend base URL (or CONVOCHECK_BASE_URL)")
}

var watchCmd = &cobra.Command{
	Use:   "watch <suite.yaml>",
	Short: "Re-run a suite file whenever it changes",
	Long: "Runs the suite once, then watches the file and re-runs on every\n" +
		"save. Meant for iterating on a suite against a live backend; exit\n" +
		"codes and history recording do not apply.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		settings, err := config.Resolve(runBaseURL, 0)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rerun := func() {
			s, err := suite.Load(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "suite: %v\n", err)
				return
			}
			rep, err := executeRun(ctx, settings, s)
			if err != nil {
				fmt.Fprintf(os.Stderr, "run: %v\n", err)
				return
			}
			fmt.Print(report.FormatText(rep))
		}

		rerun()
		fmt.Fprintf(os.Stderr, "watching %s — save to re-run, Ctrl-C to stop\n", path)
		return watch.New(path, rerun).Run(ctx)
	},
}
