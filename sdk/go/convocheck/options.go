package convocheck

import (
	"context"
	"time"

	"github.com/ppiankov/convocheck/internal/score"
)

// JudgeFunc renders a verdict on response text for judge predicates:
// pass/fail, a short explanation, and an error when the judge itself
// could not answer.
type JudgeFunc func(ctx context.Context, instruction, text string) (bool, string, error)

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	timeout     time.Duration
	fanoutLimit int
	judge       score.JudgeFunc
	userAttrs   map[string]any
}

// WithTimeout sets the per-request default timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.timeout = d }
}

// WithFanoutLimit caps concurrent requests inside a fan-out case.
func WithFanoutLimit(n int) Option {
	return func(c *clientConfig) { c.fanoutLimit = n }
}

// WithJudge supplies a verdict function for judge predicates. Without
// one, judge checks record as informational and never block.
func WithJudge(fn JudgeFunc) Option {
	return func(c *clientConfig) { c.judge = score.JudgeFunc(fn) }
}

// WithUserAttrs merges extra attributes into the user fixture payload.
func WithUserAttrs(attrs map[string]any) Option {
	return func(c *clientConfig) { c.userAttrs = attrs }
}
