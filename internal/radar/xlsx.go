package radar

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook returns an XLSX workbook (as bytes) mirroring the CSV
// reports: one sheet per table, for people who review the index in a
// spreadsheet instead of the raw CSVs.
func WriteWorkbook(agg *Aggregate, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()

	writeSheet := func(sheet string, header []string, rows [][]any, widths map[string]float64) error {
		if index, _ := f.GetSheetIndex(sheet); index == -1 {
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
		}
		for i, h := range header {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
		}
		for rowIdx, row := range rows {
			for colIdx, v := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return err
				}
			}
		}
		for cols, width := range widths {
			_ = f.SetColWidth(sheet, cols[:1], cols[2:], width)
		}
		return nil
	}

	radarRows := make([][]any, 0, len(agg.RadarRows))
	for _, r := range agg.RadarRows {
		radarRows = append(radarRows, []any{r.Corpus, r.Issue, r.DocsWithHits, r.TotalHits, r.PctDocs})
	}
	if err := writeSheet("Radar",
		[]string{"Corpus", "Issue", "Docs With Hits", "Total Hits", "Pct Docs"},
		radarRows, map[string]float64{"A-A": 12, "B-B": 24, "C-E": 14}); err != nil {
		return nil, fmt.Errorf("radar sheet: %w", err)
	}

	overallRows := make([][]any, 0, len(agg.OverallRows))
	for _, r := range agg.OverallRows {
		overallRows = append(overallRows, []any{r.Issue, r.DocsWithHits, r.TotalHits, r.PctDocs})
	}
	if err := writeSheet("Overall",
		[]string{"Issue", "Docs With Hits", "Total Hits", "Pct Docs"},
		overallRows, map[string]float64{"A-A": 24, "B-D": 14}); err != nil {
		return nil, fmt.Errorf("overall sheet: %w", err)
	}

	monthRows := make([][]any, 0, len(agg.MonthRows))
	for _, r := range agg.MonthRows {
		monthRows = append(monthRows, []any{r.Corpus, r.Month, r.Issue, r.DocCount, r.HitCount})
	}
	if err := writeSheet("Monthly",
		[]string{"Corpus", "Month", "Issue", "Doc Count", "Hit Count"},
		monthRows, map[string]float64{"A-A": 12, "B-B": 10, "C-C": 24, "D-E": 12}); err != nil {
		return nil, fmt.Errorf("monthly sheet: %w", err)
	}

	coRows := make([][]any, 0, len(agg.CoRows))
	for _, r := range agg.CoRows {
		coRows = append(coRows, []any{r.IssueA, r.IssueB, r.DocCount})
	}
	if err := writeSheet("Co-occurrence",
		[]string{"Issue A", "Issue B", "Doc Count"},
		coRows, map[string]float64{"A-B": 24, "C-C": 12}); err != nil {
		return nil, fmt.Errorf("co-occurrence sheet: %w", err)
	}

	docRows := make([][]any, 0, len(agg.IssueDocRows))
	for _, r := range agg.IssueDocRows {
		docRows = append(docRows, []any{r.Corpus, r.Issue, r.SourcePDF, r.Date, r.HitCount})
	}
	if err := writeSheet("Documents",
		[]string{"Corpus", "Issue", "Source PDF", "Date", "Hit Count"},
		docRows, map[string]float64{"A-A": 12, "B-B": 24, "C-C": 60, "D-D": 12, "E-E": 10}); err != nil {
		return nil, fmt.Errorf("documents sheet: %w", err)
	}

	// Drop the default sheet so Radar opens first.
	if err := f.DeleteSheet("Sheet1"); err == nil {
		if index, err := f.GetSheetIndex("Radar"); err == nil {
			f.SetActiveSheet(index)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("radar.xlsx.ok",
		"radar_rows", len(agg.RadarRows),
		"doc_rows", len(agg.IssueDocRows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
