// Package judge backs the judge predicate kind with an OpenAI-compatible
// chat-completions endpoint. The judge returns a YES/NO verdict plus a
// one-line reason; anything else counts as a judge error, not a backend
// failure.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/convocheck/internal/score"
)

const (
	defaultModel   = "llama-3.1-8b-instant"
	defaultTimeout = 20 * time.Second

	systemMsg = "You are a QA judge for a children's AI companion. " +
		"Answer with exactly one line: YES or NO, a dash, and a short reason. " +
		"No markdown, no commentary."
)

// Config holds judge endpoint settings.
type Config struct {
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// FromEnv reads judge configuration from the environment. The judge stays
// disabled unless an API URL is set.
func FromEnv() Config {
	return Config{
		APIURL: os.Getenv("CONVOCHECK_JUDGE_URL"),
		APIKey: os.Getenv("CONVOCHECK_JUDGE_KEY"),
		Model:  os.Getenv("CONVOCHECK_JUDGE_MODEL"),
	}
}

// Enabled reports whether a judge endpoint is configured.
func (c Config) Enabled() bool {
	return c.APIURL != ""
}

// New returns a JudgeFunc bound to the configured endpoint, or nil when
// the judge is disabled — the scorer treats nil as "skip judge checks".
func New(cfg Config) score.JudgeFunc {
	if !cfg.Enabled() {
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := &http.Client{Timeout: cfg.Timeout}

	return func(ctx context.Context, instruction, text string) (bool, string, error) {
		prompt := fmt.Sprintf("Question: %s\n\nResponse under review:\n%s", instruction, text)
		raw, err := ask(ctx, client, cfg, prompt)
		if err != nil {
			return false, "", err
		}
		return parseVerdict(raw)
	}
}

func ask(ctx context.Context, client *http.Client, cfg Config, userMsg string) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"model": cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemMsg},
			{"role": "user", "content": userMsg},
		},
		"max_tokens":  100,
		"temperature": 0,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

// parseVerdict extracts the YES/NO decision from the judge's one-liner.
func parseVerdict(raw string) (bool, string, error) {
	line := strings.TrimSpace(raw)
	upper := strings.ToUpper(line)

	switch {
	case strings.HasPrefix(upper, "YES"):
		return true, line, nil
	case strings.HasPrefix(upper, "NO"):
		return false, line, nil
	}
	return false, "", fmt.Errorf("unparseable verdict: %q", raw)
}
