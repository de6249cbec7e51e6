package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/convocheck/internal/config"
	"github.com/ppiankov/convocheck/internal/history"
	"github.com/ppiankov/convocheck/internal/judge"
	"github.com/ppiankov/convocheck/internal/model"
	"github.com/ppiankov/convocheck/internal/report"
	"github.com/ppiankov/convocheck/internal/runner"
	"github.com/ppiankov/convocheck/internal/suite"
)

var (
	runBaseURL   string
	runTimeout   time.Duration
	runFormat    string
	runOut       string
	runThreshold float64
	runFanout    int
	runNoHistory bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "Backend base URL (or CONVOCHECK_BASE_URL)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Per-request timeout (default 30s)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "text", "Output format (text|json|xlsx)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "Write the report to a file instead of stdout (required for xlsx)")
	runCmd.Flags().Float64Var(&runThreshold, "threshold", 100.0, "Minimum success rate (percent) for exit code 0")
	runCmd.Flags().IntVar(&runFanout, "fanout-limit", 0, "Cap on concurrent requests inside a fan-out case")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Skip recording the run in the local history database")
}

var runCmd = &cobra.Command{
	Use:   "run [suite]",
	Short: "Run a test suite against a backend",
	Long: "Executes every case of a suite and prints the scored report.\n" +
		"The suite argument is a builtin name (see 'convocheck suites') or a\n" +
		"path to a YAML file; default is the smoke suite.\n\n" +
		"Exit codes: 0 success rate at or above --threshold, 1 below it,\n" +
		"2 setup failure (backend unreachable before any case ran).",
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var runRun = func(cmd *cobra.Command, args []string) error {
	name := "smoke"
	if len(args) == 1 {
		name = args[0]
	}

	s, err := suite.Load(name)
	if err != nil {
		return err
	}

	settings, err := config.Resolve(runBaseURL, runTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := executeRun(ctx, settings, s)
	if err != nil && rep.State == model.StateAbortedSetupFailure {
		// The aborted report still renders: zero executed cases, ABORTED
		// banner, chosen format.
		if eerr := emitReport(rep); eerr != nil {
			fmt.Fprintf(os.Stderr, "report: %v\n", eerr)
		}
		fmt.Fprintf(os.Stderr, "setup: %v\n", err)
		os.Exit(2)
	}
	if err != nil {
		// Interrupted mid-run: report what executed, then gate below.
		fmt.Fprintf(os.Stderr, "run interrupted: %v\n", err)
	}

	if err := emitReport(rep); err != nil {
		return err
	}

	if !runNoHistory {
		recordHistory(rep)
	}

	if rep.Summary.SuccessRate < runThreshold {
		os.Exit(1)
	}
	return nil
}

func executeRun(ctx context.Context, settings config.Settings, s *suite.Suite) (*report.Report, error) {
	cfg := runner.Config{
		BaseURL:     settings.BaseURL,
		Timeout:     settings.Timeout,
		FanoutLimit: runFanout,
		Judge:       judge.New(judge.FromEnv()),
	}
	return runner.Run(ctx, cfg, s)
}

func emitReport(rep *report.Report) error {
	switch runFormat {
	case "json":
		out, err := report.FormatJSON(rep)
		if err != nil {
			return err
		}
		return writeOut(out + "\n")
	case "xlsx":
		if runOut == "" {
			return fmt.Errorf("xlsx format requires --out")
		}
		return report.WriteXLSX(rep, runOut)
	case "text":
		return writeOut(report.FormatText(rep))
	default:
		return fmt.Errorf("unknown format %q (text|json|xlsx)", runFormat)
	}
}

func writeOut(s string) error {
	if runOut == "" {
		fmt.Print(s)
		return nil
	}
	return os.WriteFile(runOut, []byte(s), 0644)
}

// recordHistory is best-effort: a broken local database never fails a run.
func recordHistory(rep *report.Report) {
	store, err := history.Open(history.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		return
	}
	defer store.Close()
	if _, err := store.Record(rep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history record failed: %v\n", err)
	}
}
