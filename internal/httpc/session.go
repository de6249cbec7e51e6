// Package httpc owns the outbound HTTP side of a harness run: one pooled
// client per run, a dispatcher that normalizes every outcome into a
// model.RequestResult, and a bounded fan-out helper.
package httpc

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the per-request budget when a case declares none.
const DefaultTimeout = 30 * time.Second

// maxPoolConns bounds the connection pool. Must cover the largest fan-out
// a case can declare so concurrent dispatches never queue on the pool.
const maxPoolConns = 32

// Session holds the single pooled HTTP client for the duration of a run.
// It is shared read-only across concurrent dispatches; no locking needed.
type Session struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

// Acquire creates the session client. A malformed base URL is a setup
// failure — the run aborts before any case executes, no retry.
func Acquire(baseURL string, timeout time.Duration) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q: missing host", baseURL)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        maxPoolConns,
		MaxIdleConnsPerHost: maxPoolConns,
		MaxConnsPerHost:     maxPoolConns,
	}

	return &Session{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Transport: transport},
		timeout: timeout,
	}, nil
}

// BaseURL returns the resolved base URL without trailing slash.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// Release closes all pooled connections. Call exactly once per Acquire,
// on exception paths too.
func (s *Session) Release() {
	s.client.CloseIdleConnections()
}
