// Package runlog records per-file extraction outcomes: a CSV log for humans
// and a SQLite store for run history.
package runlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rcwhitaker/caseindex/constants"
)

// Row is one extraction log entry. Numeric fields render empty for skips,
// matching the historical log format.
type Row struct {
	Timestamp   time.Time
	InputPath   string
	OutputTxt   string
	OutputMeta  string
	Pages       int
	OCRPages    int
	OCRMode     string
	DPI         int
	TextChars   int
	OCRChars    int
	DurationSec float64
	Status      constants.ExtractionStatus
	Error       string
}

var csvHeader = []string{
	"timestamp",
	"input_path",
	"output_txt",
	"output_meta",
	"pages",
	"ocr_pages",
	"ocr_mode",
	"dpi",
	"text_chars",
	"ocr_chars",
	"duration_sec",
	"status",
	"error",
}

// CSVLog appends rows to a CSV file, writing the header when the file is new.
type CSVLog struct {
	path string
}

func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

func (l *CSVLog) Path() string { return l.path }

// Append writes one row, creating the file (and header) on first use.
// The file is opened per call so an interrupted run leaves a complete log.
func (l *CSVLog) Append(row Row) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("mkdir log dir: %w", err)
	}

	_, statErr := os.Stat(l.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row.fields()); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (r Row) fields() []string {
	skipped := r.Status == constants.StatusSkipped
	num := func(n int) string {
		if skipped {
			return ""
		}
		return strconv.Itoa(n)
	}
	dur := ""
	if !skipped {
		dur = strconv.FormatFloat(r.DurationSec, 'f', 2, 64)
	}
	return []string{
		r.Timestamp.Format("2006-01-02 15:04:05"),
		r.InputPath,
		r.OutputTxt,
		r.OutputMeta,
		num(r.Pages),
		num(r.OCRPages),
		r.OCRMode,
		strconv.Itoa(r.DPI),
		num(r.TextChars),
		num(r.OCRChars),
		dur,
		string(r.Status),
		r.Error,
	}
}
