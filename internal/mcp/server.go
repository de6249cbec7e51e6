// Package mcp exposes the harness as MCP tools over stdio, so an agent
// can run suites and read results without shelling out to the CLI.
package mcp

import (
	"context"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/convocheck/internal/report"
	"github.com/ppiankov/convocheck/internal/score"
)

// Config holds MCP server configuration.
type Config struct {
	BaseURL string
	// Judge, when set, backs judge predicates in suites run over MCP.
	Judge score.JudgeFunc
	// HistoryPath, when set, records finished runs.
	HistoryPath string
}

// Server wraps the MCP SDK server around the suite runner.
type Server struct {
	mcpServer *mcpsdk.Server
	cfg       Config

	mu   sync.Mutex
	last *report.Report
}

// New creates an MCP server with the run/suites/last tools registered.
func New(cfg Config) *Server {
	s := &Server{cfg: cfg}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "convocheck",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all convocheck tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "convocheck_run",
		Description: "Run a test suite (builtin name or YAML path) against the configured backend and return the scored summary.",
	}, s.handleRun)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "convocheck_suites",
		Description: "List the builtin test suites with their categories and case counts.",
	}, s.handleSuites)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "convocheck_last",
		Description: "Return the full report of the most recent run in this session, including per-case details.",
	}, s.handleLast)
}

func (s *Server) setLast(r *report.Report) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()
}

func (s *Server) getLast() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
