package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/convocheck/internal/model"
	"github.com/ppiankov/convocheck/internal/report"
)

func abortedReport() *report.Report {
	return &report.Report{
		Suite:      "smoke",
		BaseURL:    "http://down.test",
		State:      model.StateAbortedSetupFailure,
		StartedAt:  time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
}

// emitFormats drives emitReport through the package flag vars the run
// command binds, restoring them afterwards.
func emitTo(t *testing.T, format string, rep *report.Report) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "report.out")

	prevFormat, prevOut := runFormat, runOut
	runFormat, runOut = format, out
	t.Cleanup(func() { runFormat, runOut = prevFormat, prevOut })

	if err := emitReport(rep); err != nil {
		t.Fatalf("emitReport: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestEmitAbortedReportText(t *testing.T) {
	out := emitTo(t, "text", abortedReport())
	if !strings.Contains(out, "ABORTED") {
		t.Errorf("aborted run not flagged in output:\n%s", out)
	}
	if !strings.Contains(out, "0 cases") {
		t.Errorf("output does not state that zero cases executed:\n%s", out)
	}
}

func TestEmitAbortedReportJSON(t *testing.T) {
	out := emitTo(t, "json", abortedReport())
	if !strings.Contains(out, string(model.StateAbortedSetupFailure)) {
		t.Errorf("aborted state missing from JSON output:\n%s", out)
	}
}

func TestEmitUnknownFormatRejected(t *testing.T) {
	prevFormat, prevOut := runFormat, runOut
	runFormat, runOut = "csv", ""
	t.Cleanup(func() { runFormat, runOut = prevFormat, prevOut })

	if err := emitReport(abortedReport()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestEmitXLSXRequiresOut(t *testing.T) {
	prevFormat, prevOut := runFormat, runOut
	runFormat, runOut = "xlsx", ""
	t.Cleanup(func() { runFormat, runOut = prevFormat, prevOut })

	if err := emitReport(abortedReport()); err == nil {
		t.Fatal("expected error when xlsx has no --out")
	}
}
