package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/convocheck/internal/model"
)

const (
	resultsSheet = "results"

	errorBgColor   = "FF5900"
	warningBgColor = "FFEB9C"

	// Rows slower than this get the warning fill.
	slowCaseThreshold = 5 * time.Second
)

var xlsxHeaders = []string{
	"#", "Case", "Category", "Status", "Latency", "Details",
}

// WriteXLSX saves the report as a spreadsheet: one row per entry, failed
// and errored rows filled red, slow rows yellow, summary block below.
func WriteXLSX(r *Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	errorStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{errorBgColor}},
	})
	warningStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{warningBgColor}},
	})

	for i, h := range xlsxHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(resultsSheet, cell, h)
	}
	f.SetColWidth(resultsSheet, "B", "C", 28)
	f.SetColWidth(resultsSheet, "F", "F", 60)

	for i, e := range r.Entries {
		row := i + 2
		cells := []any{
			i + 1,
			e.Case,
			e.Category,
			string(e.Status),
			e.Latency.Round(time.Millisecond).String(),
			e.Score.Details,
		}
		for col, val := range cells {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			f.SetCellValue(resultsSheet, cell, val)

			switch {
			case e.Status == model.EntryFail || e.Status == model.EntryError:
				f.SetCellStyle(resultsSheet, cell, cell, errorStyle)
			case e.Latency > slowCaseThreshold:
				f.SetCellStyle(resultsSheet, cell, cell, warningStyle)
			}
		}
	}

	summaryRow := len(r.Entries) + 3
	executed := r.Summary.Total - r.Summary.Skipped
	lines := []string{
		fmt.Sprintf("Suite: %s (%s)", r.Suite, r.BaseURL),
		fmt.Sprintf("Executed: %d  Passed: %d  Failed: %d  Errors: %d  Skipped: %d",
			executed, r.Summary.Passed, r.Summary.Failed, r.Summary.Errored, r.Summary.Skipped),
		fmt.Sprintf("Success rate: %.1f%%", r.Summary.SuccessRate),
		fmt.Sprintf("Duration: %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)),
	}
	for i, line := range lines {
		f.SetCellValue(resultsSheet, fmt.Sprintf("A%d", summaryRow+i), line)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
