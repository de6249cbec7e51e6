package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/convocheck/internal/history"
	"github.com/ppiankov/convocheck/internal/model"
	"github.com/ppiankov/convocheck/internal/report"
	"github.com/ppiankov/convocheck/internal/runner"
	"github.com/ppiankov/convocheck/internal/suite"
)

// --- Input/Output types ---

// RunInput defines parameters for the convocheck_run tool.
type RunInput struct {
	Suite   string `json:"suite" jsonschema:"builtin suite name or path to a YAML suite file"`
	BaseURL string `json:"base_url,omitempty" jsonschema:"backend base URL, overrides the server default"`
}

// RunOutput is the scored summary of one run.
type RunOutput struct {
	Suite       string  `json:"suite"`
	State       string  `json:"state"`
	Total       int     `json:"total"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	Errored     int     `json:"errored"`
	Skipped     int     `json:"skipped"`
	SuccessRate float64 `json:"success_rate"`
	Failing     []Check `json:"failing,omitempty"`
}

// Check describes one non-passing case.
type Check struct {
	Case     string `json:"case"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Details  string `json:"details,omitempty"`
}

// SuitesInput is empty — no parameters needed.
type SuitesInput struct{}

// SuitesOutput lists the builtin suites.
type SuitesOutput struct {
	Suites []SuiteInfo `json:"suites"`
}

// SuiteInfo describes one builtin suite.
type SuiteInfo struct {
	Name       string `json:"name"`
	Categories int    `json:"categories"`
	Cases      int    `json:"cases"`
}

// LastInput is empty — no parameters needed.
type LastInput struct{}

// LastOutput carries the most recent full report.
type LastOutput struct {
	Report *report.Report `json:"report,omitempty"`
	Note   string         `json:"note,omitempty"`
}

// --- Handlers ---

func (s *Server) handleRun(ctx context.Context, req *mcpsdk.CallToolRequest, input RunInput) (*mcpsdk.CallToolResult, RunOutput, error) {
	if input.Suite == "" {
		return nil, RunOutput{}, fmt.Errorf("suite is required")
	}

	loaded, err := suite.Load(input.Suite)
	if err != nil {
		return nil, RunOutput{}, err
	}

	baseURL := input.BaseURL
	if baseURL == "" {
		baseURL = s.cfg.BaseURL
	}
	if baseURL == "" {
		return nil, RunOutput{}, fmt.Errorf("no backend URL: pass base_url or configure the server")
	}

	rep, err := runner.Run(ctx, runner.Config{BaseURL: baseURL, Judge: s.cfg.Judge}, loaded)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("run aborted: %w", err)
	}
	s.setLast(rep)

	if s.cfg.HistoryPath != "" {
		if store, herr := history.Open(s.cfg.HistoryPath); herr == nil {
			_, _ = store.Record(rep)
			store.Close()
		}
	}

	out := RunOutput{
		Suite:       rep.Suite,
		State:       string(rep.State),
		Total:       rep.Summary.Total,
		Passed:      rep.Summary.Passed,
		Failed:      rep.Summary.Failed,
		Errored:     rep.Summary.Errored,
		Skipped:     rep.Summary.Skipped,
		SuccessRate: rep.Summary.SuccessRate,
	}
	for _, e := range rep.Entries {
		if e.Status == model.EntryPass || e.Status == model.EntrySkipped {
			continue
		}
		out.Failing = append(out.Failing, Check{
			Case:     e.Case,
			Category: e.Category,
			Status:   string(e.Status),
			Details:  e.Score.Details,
		})
	}

	result := &mcpsdk.CallToolResult{}
	if out.Failed > 0 || out.Errored > 0 {
		result.IsError = true
	}
	return result, out, nil
}

func (s *Server) handleSuites(ctx context.Context, req *mcpsdk.CallToolRequest, input SuitesInput) (*mcpsdk.CallToolResult, SuitesOutput, error) {
	var out SuitesOutput
	for _, name := range suite.List() {
		loaded, err := suite.Load(name)
		if err != nil {
			continue
		}
		out.Suites = append(out.Suites, SuiteInfo{
			Name:       name,
			Categories: len(loaded.Categories),
			Cases:      len(loaded.Cases()),
		})
	}
	return nil, out, nil
}

func (s *Server) handleLast(ctx context.Context, req *mcpsdk.CallToolRequest, input LastInput) (*mcpsdk.CallToolResult, LastOutput, error) {
	rep := s.getLast()
	if rep == nil {
		return nil, LastOutput{Note: "no run in this session yet"}, nil
	}
	return nil, LastOutput{Report: rep}, nil
}
