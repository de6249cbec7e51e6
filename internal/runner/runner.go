// Package runner drives a suite end to end: acquire the session, build
// fixtures, dispatch and score every case in declaration order, and hand
// back the finished report. No exception escapes a single case — the
// aggregator receives exactly one entry per declared case.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/convocheck/internal/fixture"
	"github.com/ppiankov/convocheck/internal/httpc"
	"github.com/ppiankov/convocheck/internal/model"
	"github.com/ppiankov/convocheck/internal/report"
	"github.com/ppiankov/convocheck/internal/score"
	"github.com/ppiankov/convocheck/internal/suite"
)

// defaultFanoutLimit bounds concurrent dispatches within one fan-out case.
const defaultFanoutLimit = 8

// Config holds the knobs for one run.
type Config struct {
	BaseURL string
	// Timeout is the per-request default; cases may override.
	Timeout time.Duration
	// FanoutLimit caps in-flight requests inside a fan-out case.
	FanoutLimit int
	// Judge, when set, backs the judge predicate kind.
	Judge score.JudgeFunc
	// UserAttrs are merged into the user fixture creation payload.
	UserAttrs map[string]any
}

// Run executes every case of the suite sequentially and returns the
// report. A setup failure (bad base URL) aborts before any case runs: the
// report comes back with zero entries in StateAbortedSetupFailure and a
// non-nil error. Per-case trouble never aborts the run.
func Run(ctx context.Context, cfg Config, s *suite.Suite) (*report.Report, error) {
	rep := &report.Report{
		Suite:     s.Name,
		BaseURL:   cfg.BaseURL,
		State:     model.StateNotStarted,
		StartedAt: time.Now().UTC(),
	}

	sess, err := httpc.Acquire(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		rep.State = model.StateAbortedSetupFailure
		rep.FinishedAt = time.Now().UTC()
		rep.Summary = report.NewAggregator().Summarize()
		return rep, fmt.Errorf("acquire session: %w", err)
	}
	rep.State = model.StateSessionAcquired

	// Fixture creation failing degrades to skips on dependent cases,
	// not an abort: the rest of the suite still runs.
	var user fixture.User
	if needsUser(s) {
		user = fixture.CreateUser(ctx, sess, cfg.UserAttrs)
	}

	rep.State = model.StateRunning
	agg := report.NewAggregator()
	scorer := &score.Scorer{Judge: cfg.Judge}

	limit := cfg.FanoutLimit
	if limit <= 0 {
		limit = defaultFanoutLimit
	}

	for _, c := range s.Cases() {
		if err := ctx.Err(); err != nil {
			break
		}
		agg.Record(runCase(ctx, sess, scorer, user, limit, c))
	}

	sess.Release()
	rep.State = model.StateSessionReleased

	rep.Entries = agg.Entries()
	rep.Summary = agg.Summarize()
	rep.State = model.StateReported

	rep.FinishedAt = time.Now().UTC()
	rep.State = model.StateTerminated

	return rep, ctx.Err()
}

// runCase executes one declared case and always produces an entry.
func runCase(ctx context.Context, sess *httpc.Session, scorer *score.Scorer, user fixture.User, limit int, c model.TestCase) model.Entry {
	if c.NeedsUser && !user.Available {
		return model.Entry{
			Case:     c.Name,
			Category: c.Category,
			Status:   model.EntrySkipped,
			Score:    model.ScoreResult{Details: "user fixture unavailable"},
		}
	}

	req := fixture.Expand(c.Request, user)

	var results []model.RequestResult
	if c.Fanout > 1 {
		reqs := make([]model.Request, c.Fanout)
		for i := range reqs {
			reqs[i] = req
		}
		results = sess.DispatchAll(ctx, reqs, limit)
	} else {
		results = []model.RequestResult{sess.Dispatch(ctx, req)}
	}

	sr := scorer.ScoreGroup(ctx, results, c.Expect)

	return model.Entry{
		Case:     c.Name,
		Category: c.Category,
		Status:   classify(sr, results),
		Score:    sr,
		Latency:  slowest(results),
	}
}

// classify separates assertion failures from harness/network errors: a
// failed score with no received response means the check could not be
// completed at all.
func classify(sr model.ScoreResult, results []model.RequestResult) model.EntryStatus {
	if sr.Passed {
		return model.EntryPass
	}
	for _, res := range results {
		if res.Received() {
			return model.EntryFail
		}
	}
	return model.EntryError
}

// slowest is the group latency: the join point waits for every member, so
// the case takes as long as its slowest request.
func slowest(results []model.RequestResult) time.Duration {
	var max time.Duration
	for _, res := range results {
		if res.Elapsed > max {
			max = res.Elapsed
		}
	}
	return max
}

func needsUser(s *suite.Suite) bool {
	for _, c := range s.Cases() {
		if c.NeedsUser {
			return true
		}
	}
	return false
}
