package convocheck

import (
	"context"
	"fmt"

	"github.com/ppiankov/convocheck/internal/report"
	"github.com/ppiankov/convocheck/internal/runner"
	"github.com/ppiankov/convocheck/internal/suite"
)

// Report is the scored outcome of a run.
type Report = report.Report

// Client runs suites against one backend. Safe for concurrent use; each
// RunSuite call acquires and releases its own HTTP session.
type Client struct {
	baseURL string
	cfg     clientConfig
}

// New creates a Client bound to the backend base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("convocheck: base URL is required")
	}
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Client{baseURL: baseURL, cfg: cfg}, nil
}

// RunSuite loads a builtin suite by name (or a YAML file by path) and
// runs it to completion. The returned error covers setup failures only;
// per-case failures land in the report.
func (c *Client) RunSuite(ctx context.Context, nameOrPath string) (*Report, error) {
	s, err := suite.Load(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("convocheck: %w", err)
	}
	return runner.Run(ctx, runner.Config{
		BaseURL:     c.baseURL,
		Timeout:     c.cfg.timeout,
		FanoutLimit: c.cfg.fanoutLimit,
		Judge:       c.cfg.judge,
		UserAttrs:   c.cfg.userAttrs,
	}, s)
}

// Suites lists the builtin suite names.
func Suites() []string {
	return suite.List()
}
