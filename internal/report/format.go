package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/convocheck/internal/model"
)

// FormatText renders a report as human-readable text. Pure function of
// the report: rendering twice yields byte-identical output.
func FormatText(r *Report) string {
	var b strings.Builder

	header := fmt.Sprintf("Suite: %s — %s", r.Suite, r.BaseURL)
	fmt.Fprintln(&b, header)
	fmt.Fprintln(&b, strings.Repeat("═", len([]rune(header))))

	if r.State == model.StateAbortedSetupFailure {
		fmt.Fprintln(&b, "ABORTED: setup failed before any case executed (0 cases)")
		return b.String()
	}

	if r.Summary.Total == 0 {
		fmt.Fprintln(&b, "0/0 cases executed (no cases declared)")
		return b.String()
	}

	for _, cat := range r.Summary.Categories {
		status := "PASS"
		if cat.Failed > 0 || cat.Errored > 0 {
			status = "FAIL"
		}
		executed := cat.Total - cat.Skipped
		fmt.Fprintf(&b, "  %-22s %d/%-4d %s", cat.Name, cat.Passed, executed, status)
		if cat.Skipped > 0 {
			fmt.Fprintf(&b, "  (%d skipped)", cat.Skipped)
		}
		b.WriteString("\n")
	}

	var failing []model.Entry
	for _, e := range r.Entries {
		if e.Status == model.EntryFail || e.Status == model.EntryError {
			failing = append(failing, e)
		}
	}

	if len(failing) > 0 {
		b.WriteString("\n")
		for _, e := range failing {
			// Assertion failures and harness/network errors need different
			// remediation, so they carry distinct markers.
			marker := "FAIL "
			if e.Status == model.EntryError {
				marker = "ERROR"
			}
			fmt.Fprintf(&b, "  %s %s [%s]: %s\n", marker, e.Case, e.Category, e.Score.Details)
		}
	}

	fmt.Fprintln(&b, strings.Repeat("─", len([]rune(header))))

	executed := r.Summary.Total - r.Summary.Skipped
	fmt.Fprintf(&b, "Success rate: %.1f%% (%d/%d executed", r.Summary.SuccessRate, r.Summary.Passed, executed)
	if r.Summary.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", r.Summary.Skipped)
	}
	if r.Summary.Errored > 0 {
		fmt.Fprintf(&b, ", %d harness errors", r.Summary.Errored)
	}
	fmt.Fprintf(&b, ") in %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))

	return b.String()
}

// FormatJSON renders the full report for downstream consumption.
func FormatJSON(r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(data), nil
}
