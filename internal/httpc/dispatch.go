package httpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/convocheck/internal/model"
)

// Dispatch executes exactly one HTTP request and normalizes its outcome.
// It never returns an error: transport failures become tagged results with
// sentinel status codes so the scorer can branch on the tag.
// Safe to invoke concurrently; the dispatcher holds no mutable state.
func (s *Session) Dispatch(ctx context.Context, req model.Request) model.RequestResult {
	budget := req.Timeout
	if budget <= 0 {
		budget = s.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	httpReq, err := s.buildRequest(ctx, req)
	if err != nil {
		return model.RequestResult{
			StatusCode: model.StatusSentinelTransport,
			Outcome:    model.OutcomeTransport,
			Err:        fmt.Sprintf("build request: %v", err),
		}
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		elapsed := time.Since(start)
		if isTimeout(err) {
			return model.RequestResult{
				StatusCode: model.StatusSentinelTimeout,
				Outcome:    model.OutcomeTimeout,
				Err:        fmt.Sprintf("no response within %s", budget),
				Elapsed:    elapsed,
			}
		}
		return model.RequestResult{
			StatusCode: model.StatusSentinelTransport,
			Outcome:    model.OutcomeTransport,
			Err:        err.Error(),
			Elapsed:    elapsed,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	// Latency is wall clock from dispatch to full response receipt.
	elapsed := time.Since(start)
	if err != nil {
		if isTimeout(err) {
			return model.RequestResult{
				StatusCode: model.StatusSentinelTimeout,
				Outcome:    model.OutcomeTimeout,
				Err:        fmt.Sprintf("body read timed out after %s", budget),
				Elapsed:    elapsed,
			}
		}
		return model.RequestResult{
			StatusCode: model.StatusSentinelTransport,
			Outcome:    model.OutcomeTransport,
			Err:        fmt.Sprintf("read body: %v", err),
			Elapsed:    elapsed,
		}
	}

	result := model.RequestResult{
		StatusCode: resp.StatusCode,
		Outcome:    model.OutcomeHTTP,
		RawBody:    string(raw),
		Elapsed:    elapsed,
	}

	if len(raw) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			// Undecodable body is recorded, never silently discarded:
			// the raw text stays on the result for diagnostics.
			result.Outcome = model.OutcomeDecode
			result.Err = fmt.Sprintf("decode body: %v", err)
		} else {
			result.Body = body
		}
	}

	return result
}

// DispatchAll issues every request concurrently, at most limit in flight,
// and joins before returning. Results preserve input order. A timed-out
// request yields its own tagged result and never blocks or cancels
// siblings in the fan-out.
func (s *Session) DispatchAll(ctx context.Context, reqs []model.Request, limit int) []model.RequestResult {
	if limit <= 0 || limit > len(reqs) {
		limit = len(reqs)
	}

	results := make([]model.RequestResult, len(reqs))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req model.Request) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.Dispatch(ctx, req)
		}(i, req)
	}

	wg.Wait()
	return results
}

// buildRequest assembles the URL, encodes the payload per the declared
// encoding, and sets headers. Getting the encoding wrong is a common
// source of false failures, so the case's declaration is authoritative.
func (s *Session) buildRequest(ctx context.Context, req model.Request) (*http.Request, error) {
	target := s.baseURL + req.Path
	if len(req.Query) > 0 {
		q := url.Values{}
		for k, v := range req.Query {
			q.Set(k, v)
		}
		target += "?" + q.Encode()
	}

	var body io.Reader
	contentType := ""

	switch effectiveEncoding(req) {
	case model.EncodingNone:
		body = nil

	case model.EncodingJSON:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal JSON payload: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"

	case model.EncodingForm:
		form := url.Values{}
		for k, v := range req.Body {
			form.Set(k, fmt.Sprint(v))
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"

	case model.EncodingMultipart:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range req.Body {
			if err := w.WriteField(k, fmt.Sprint(v)); err != nil {
				return nil, fmt.Errorf("write multipart field %q: %w", k, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("finalize multipart payload: %w", err)
		}
		body = &buf
		contentType = w.FormDataContentType()

	default:
		return nil, fmt.Errorf("unsupported encoding %q", req.Encoding)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// effectiveEncoding defaults bodyless requests to none and everything
// else to JSON, matching what most backend routes expect.
func effectiveEncoding(req model.Request) model.Encoding {
	if req.Encoding != "" {
		return req.Encoding
	}
	if len(req.Body) == 0 {
		return model.EncodingNone
	}
	return model.EncodingJSON
}

// isTimeout reports whether err is a deadline or net timeout rather than
// a hard transport failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
