package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/convocheck/internal/model"
	"github.com/ppiankov/convocheck/internal/report"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(suiteName string, rate float64) *report.Report {
	return &report.Report{
		Suite:      suiteName,
		BaseURL:    "http://backend.test",
		State:      model.StateTerminated,
		StartedAt:  time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 20, 9, 1, 0, 0, time.UTC),
		Entries: []model.Entry{
			{Case: "health", Category: "availability", Status: model.EntryPass},
		},
		Summary: report.Summary{Total: 1, Passed: 1, SuccessRate: rate},
	}
}

func TestRecordAndList(t *testing.T) {
	s := openStore(t)

	if _, err := s.Record(sampleReport("smoke", 100.0)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := s.Record(sampleReport("companion", 85.5)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := s.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	// Newest first.
	if runs[0].Suite != "companion" || runs[1].Suite != "smoke" {
		t.Errorf("order = %s, %s; want companion, smoke", runs[0].Suite, runs[1].Suite)
	}
	if runs[0].SuccessRate != 85.5 {
		t.Errorf("success rate = %v, want 85.5", runs[0].SuccessRate)
	}
	if runs[1].StartedAt.IsZero() {
		t.Error("started_at not round-tripped")
	}
}

func TestGetRoundTripsFullReport(t *testing.T) {
	s := openStore(t)

	id, err := s.Record(sampleReport("smoke", 100.0))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	r, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Suite != "smoke" || len(r.Entries) != 1 || r.Entries[0].Case != "health" {
		t.Errorf("report did not round-trip: %+v", r)
	}
}

func TestGetUnknownRun(t *testing.T) {
	s := openStore(t)
	if _, err := s.Get(999); err == nil {
		t.Fatal("expected error for missing run")
	}
}

func TestListLimit(t *testing.T) {
	s := openStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.Record(sampleReport("smoke", 100.0)); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.List(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Errorf("len(runs) = %d, want 3", len(runs))
	}
}
