// Package extract turns source PDFs into the banner-formatted text files the
// tagging and mention stages consume.
package extract

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rcwhitaker/caseindex/constants"
	"github.com/rcwhitaker/caseindex/internal/common"
)

// Result is the per-file extraction outcome.
type Result struct {
	Pages     int
	OCRPages  int
	TextChars int
	OCRChars  int
	Status    constants.ExtractionStatus
	Error     string
	Duration  time.Duration
}

// Extractor extracts a PDF's text layer and OCRs rendered pages through
// pdftoppm + tesseract.
type Extractor struct {
	cfg    common.OCRConfig
	runner Runner
	textFn func(path string) ([]string, error)
	logger *slog.Logger
}

func NewExtractor(cfg common.OCRConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Mode == "" {
		cfg.Mode = "always"
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 50
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, textFn: pageTexts, logger: logger}
}

// needsOCR decides per page whether the rendered image goes through tesseract.
func (e *Extractor) needsOCR(pageText string) bool {
	if e.cfg.Mode == "always" {
		return true
	}
	return len(strings.TrimSpace(pageText)) < e.cfg.MinTextChars
}

// ExtractPDF writes the text file for one PDF and reports the outcome.
// A failure to read the PDF is an error Result, not a returned error: the
// batch continues and the caller logs it.
func (e *Extractor) ExtractPDF(ctx context.Context, inputPath, outputTxt string) Result {
	start := time.Now()
	res := Result{Status: constants.StatusOK}

	texts, err := e.textFn(inputPath)
	if err != nil {
		res.Status = constants.StatusError
		res.Error = err.Error()
		res.Duration = time.Since(start)
		return res
	}
	res.Pages = len(texts)

	ocrNeeded := make([]bool, len(texts))
	anyOCR := false
	for i, text := range texts {
		res.TextChars += len(text)
		if e.needsOCR(text) {
			ocrNeeded[i] = true
			anyOCR = true
		}
	}

	var pageImages []string
	var errDetails []string
	if anyOCR {
		pageImages, err = e.renderPages(ctx, inputPath)
		if err != nil {
			// Text layer is still worth keeping; OCR failures make the
			// result partial below.
			e.logger.Warn("render failed", "path", inputPath, "error", err)
			pageImages = nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputTxt), 0o755); err != nil {
		res.Status = constants.StatusError
		res.Error = err.Error()
		res.Duration = time.Since(start)
		return res
	}
	out, err := os.Create(outputTxt)
	if err != nil {
		res.Status = constants.StatusError
		res.Error = err.Error()
		res.Duration = time.Since(start)
		return res
	}
	w := bufio.NewWriter(out)

	fmt.Fprintf(w, "FILE: %s\n", inputPath)
	fmt.Fprintf(w, "PAGES: %d\n", res.Pages)
	fmt.Fprintf(w, "OCR_MODE: %s\n", e.cfg.Mode)
	fmt.Fprintf(w, "DPI: %d\n", e.cfg.DPI)
	w.WriteString(strings.Repeat("=", 80) + "\n\n")

	for i, text := range texts {
		fmt.Fprintf(w, "=== PAGE %d ===\n", i+1)
		if strings.TrimSpace(text) != "" {
			w.WriteString("--- EXTRACTED TEXT ---\n")
			w.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				w.WriteString("\n")
			}
		}
		if ocrNeeded[i] {
			res.OCRPages++
			ocrText := ""
			if i < len(pageImages) {
				ocrText, err = e.ocrImage(ctx, pageImages[i])
				if err != nil {
					errDetails = append(errDetails, fmt.Sprintf("page %d: %v", i+1, err))
					ocrText = ""
				}
			} else {
				errDetails = append(errDetails, fmt.Sprintf("page %d: no rendered image", i+1))
			}
			res.OCRChars += len(ocrText)
			w.WriteString("--- OCR TEXT ---\n")
			w.WriteString(ocrText)
			if !strings.HasSuffix(ocrText, "\n") {
				w.WriteString("\n")
			}
		}
		w.WriteString("\n")
	}

	if len(pageImages) > 0 {
		_ = os.RemoveAll(filepath.Dir(pageImages[0]))
	}

	if err := w.Flush(); err != nil {
		res.Status = constants.StatusError
		res.Error = err.Error()
	}
	if err := out.Close(); err != nil && res.Status == constants.StatusOK {
		res.Status = constants.StatusError
		res.Error = err.Error()
	}

	if len(errDetails) > 0 && res.Status == constants.StatusOK {
		res.Status = constants.StatusPartial
		if len(errDetails) > 5 {
			errDetails = errDetails[:5]
		}
		res.Error = strings.Join(errDetails, " | ")
	}
	res.Duration = time.Since(start)
	return res
}

// renderPages rasterizes every page to PNG in a temp dir and returns the
// image paths in page order.
func (e *Extractor) renderPages(ctx context.Context, path string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "ci-pp-*")
	if err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// pdftoppm pads page numbers uniformly, so a lexical sort is page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("pdftoppm produced no images")
	}
	return matches, nil
}

func (e *Extractor) ocrImage(ctx context.Context, imgPath string) (string, error) {
	// tesseract <img> stdout -l eng --oem 1 --psm 3
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imgPath, "stdout", "-l", e.cfg.Lang, "--oem", "1", "--psm", "3")
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
