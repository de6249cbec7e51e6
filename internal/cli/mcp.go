package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/convocheck/internal/config"
	"github.com/ppiankov/convocheck/internal/history"
	"github.com/ppiankov/convocheck/internal/judge"
	"github.com/ppiankov/convocheck/internal/mcp"
)

var mcpBaseURL string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpBaseURL, "base-url", "", "Backend base URL (or CONVOCHECK_BASE_URL)")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the harness as MCP tools over stdio",
	Long: "Exposes convocheck_run, convocheck_suites and convocheck_last as MCP\n" +
		"tools, so an agent can exercise a backend and read scored results.\n" +
		"The base URL may also be supplied per call.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The base URL is optional here: a client can pass one per run.
		settings, err := config.Resolve(mcpBaseURL, 0)
		baseURL := settings.BaseURL
		if err != nil {
			baseURL = ""
		}

		srv := mcp.New(mcp.Config{
			BaseURL:     baseURL,
			Judge:       judge.New(judge.FromEnv()),
			HistoryPath: history.DefaultPath(),
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}
