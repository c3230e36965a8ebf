package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rcwhitaker/caseindex/constants"
	"github.com/rcwhitaker/caseindex/internal/runlog"
)

// Meta is the per-file JSON sidecar written next to each text file.
type Meta struct {
	InputPath   string  `json:"input_path"`
	OutputTxt   string  `json:"output_txt"`
	Pages       int     `json:"pages"`
	OCRPages    int     `json:"ocr_pages"`
	OCRMode     string  `json:"ocr_mode"`
	DPI         int     `json:"dpi"`
	Lang        string  `json:"lang"`
	TextChars   int     `json:"text_chars"`
	OCRChars    int     `json:"ocr_chars"`
	DurationSec float64 `json:"duration_sec"`
	Status      string  `json:"status"`
	Error       string  `json:"error"`
}

// Stage drives extraction for one run: resume checks, skip handling, and
// outcome recording. Store is optional; the CSV log is not.
type Stage struct {
	Extractor *Extractor
	Log       *runlog.CSVLog
	Store     *runlog.Store
	RunID     uuid.UUID
	Resume    bool
	LogSkips  bool
	Logger    *slog.Logger
}

// ProcessPDF extracts one PDF into outputTxt (+ JSON sidecar) and returns the
// outcome status. skipReason, when non-empty, marks the file skipped without
// touching it. With Resume set, files whose output already exists non-empty
// are skipped, so an interrupted run converges to the same output set when
// rerun.
func (s *Stage) ProcessPDF(ctx context.Context, inputPath, outputTxt, outputMeta, skipReason string) (constants.ExtractionStatus, error) {
	cfg := s.Extractor.cfg

	// Resume wins over everything else: output already present means done.
	if s.Resume && outputExists(outputTxt) {
		if s.LogSkips {
			return constants.StatusSkipped, s.recordSkip(ctx, inputPath, outputTxt, outputMeta, "")
		}
		return constants.StatusSkipped, nil
	}
	if skipReason != "" {
		// Pattern skips are always logged; the reason lands in the error column.
		if s.LogSkips {
			return constants.StatusSkipped, s.recordSkip(ctx, inputPath, outputTxt, outputMeta, skipReason)
		}
		return constants.StatusSkipped, nil
	}

	res := s.Extractor.ExtractPDF(ctx, inputPath, outputTxt)
	durSec := math.Round(res.Duration.Seconds()*100) / 100

	meta := Meta{
		InputPath:   inputPath,
		OutputTxt:   outputTxt,
		Pages:       res.Pages,
		OCRPages:    res.OCRPages,
		OCRMode:     cfg.Mode,
		DPI:         cfg.DPI,
		Lang:        cfg.Lang,
		TextChars:   res.TextChars,
		OCRChars:    res.OCRChars,
		DurationSec: durSec,
		Status:      string(res.Status),
		Error:       res.Error,
	}
	if err := writeMeta(outputMeta, meta); err != nil {
		return res.Status, err
	}

	row := runlog.Row{
		Timestamp:   time.Now(),
		InputPath:   inputPath,
		OutputTxt:   outputTxt,
		OutputMeta:  outputMeta,
		Pages:       res.Pages,
		OCRPages:    res.OCRPages,
		OCRMode:     cfg.Mode,
		DPI:         cfg.DPI,
		TextChars:   res.TextChars,
		OCRChars:    res.OCRChars,
		DurationSec: durSec,
		Status:      res.Status,
		Error:       res.Error,
	}
	return res.Status, s.record(ctx, row)
}

func (s *Stage) recordSkip(ctx context.Context, inputPath, outputTxt, outputMeta, reason string) error {
	cfg := s.Extractor.cfg
	return s.record(ctx, runlog.Row{
		Timestamp:  time.Now(),
		InputPath:  inputPath,
		OutputTxt:  outputTxt,
		OutputMeta: outputMeta,
		OCRMode:    cfg.Mode,
		DPI:        cfg.DPI,
		Status:     constants.StatusSkipped,
		Error:      reason,
	})
}

func (s *Stage) record(ctx context.Context, row runlog.Row) error {
	if err := s.Log.Append(row); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	if s.Store != nil {
		if err := s.Store.RecordOutcome(ctx, s.RunID, row); err != nil {
			// Run history is best-effort; the CSV log is the record.
			s.Logger.Warn("run store record failed", "path", row.InputPath, "error", err)
		}
	}
	return nil
}

func writeMeta(path string, meta Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir meta dir: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

func outputExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
