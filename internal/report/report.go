// Package report accumulates scored entries in execution order and renders
// the final run report. The aggregator is an explicit instance handed
// through the run — no package-level state.
package report

import (
	"time"

	"github.com/ppiankov/convocheck/internal/model"
)

// CategorySummary is the rollup for one caller-assigned category label.
type CategorySummary struct {
	Name    string  `json:"name"`
	Total   int     `json:"total"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Errored int     `json:"errored"`
	Skipped int     `json:"skipped"`
	// SuccessRate is passed / executed * 100. Skipped entries are counted
	// separately and excluded from the denominator.
	SuccessRate float64 `json:"success_rate"`
}

// Summary is the whole-run rollup.
type Summary struct {
	Total       int               `json:"total"`
	Passed      int               `json:"passed"`
	Failed      int               `json:"failed"`
	Errored     int               `json:"errored"`
	Skipped     int               `json:"skipped"`
	SuccessRate float64           `json:"success_rate"`
	Categories  []CategorySummary `json:"categories"`
}

// Report is the finished record of one run.
type Report struct {
	Suite      string         `json:"suite"`
	BaseURL    string         `json:"base_url"`
	State      model.RunState `json:"state"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Entries    []model.Entry  `json:"entries"`
	Summary    Summary        `json:"summary"`
}

// Aggregator collects entries during a run. Append-only: prior entries are
// never mutated, so every dispatched case lands exactly once.
type Aggregator struct {
	entries []model.Entry
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Record appends one entry in execution order.
func (a *Aggregator) Record(e model.Entry) {
	a.entries = append(a.entries, e)
}

// Entries returns the recorded entries in execution order.
func (a *Aggregator) Entries() []model.Entry {
	return a.entries
}

// Summarize computes per-category and overall rollups. Categories keep
// first-seen order so rendering stays stable across identical runs.
func (a *Aggregator) Summarize() Summary {
	var sum Summary
	index := map[string]int{}

	for _, e := range a.entries {
		if _, ok := index[e.Category]; !ok {
			index[e.Category] = len(sum.Categories)
			sum.Categories = append(sum.Categories, CategorySummary{Name: e.Category})
		}
		cat := &sum.Categories[index[e.Category]]

		cat.Total++
		sum.Total++
		switch e.Status {
		case model.EntryPass:
			cat.Passed++
			sum.Passed++
		case model.EntryFail:
			cat.Failed++
			sum.Failed++
		case model.EntryError:
			cat.Errored++
			sum.Errored++
		case model.EntrySkipped:
			cat.Skipped++
			sum.Skipped++
		}
	}

	for i := range sum.Categories {
		sum.Categories[i].SuccessRate = rate(sum.Categories[i].Passed, sum.Categories[i].Total-sum.Categories[i].Skipped)
	}
	sum.SuccessRate = rate(sum.Passed, sum.Total-sum.Skipped)

	return sum
}

// rate guards the zero-executed case: 0/0 reports 0.0, never a division
// by zero.
func rate(passed, executed int) float64 {
	if executed == 0 {
		return 0.0
	}
	return float64(passed) / float64(executed) * 100.0
}
