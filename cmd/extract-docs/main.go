package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rcwhitaker/caseindex/constants"
	"github.com/rcwhitaker/caseindex/internal/common"
	"github.com/rcwhitaker/caseindex/internal/corpus"
	"github.com/rcwhitaker/caseindex/internal/extract"
	"github.com/rcwhitaker/caseindex/internal/runlog"
	"github.com/rcwhitaker/caseindex/internal/watch"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func main() {
	var (
		input        = flag.String("input", "", "root directory of source PDFs (required)")
		output       = flag.String("output", "", "root directory for extracted text (required)")
		logPath      = flag.String("log", "", "extraction CSV log path (defaults to <output>/extraction_log.csv)")
		ocrMode      = flag.String("ocr-mode", "", "\"always\" or \"auto\" (overrides OCR_MODE)")
		minTextChars = flag.Int("min-text-chars", 0, "auto mode: min text-layer chars before a page skips OCR (overrides OCR_MIN_TEXT_CHARS)")
		dpi          = flag.Int("dpi", 0, "render DPI for OCR images (overrides OCR_DPI)")
		lang         = flag.String("lang", "", "tesseract language(s), e.g. \"eng\" (overrides OCR_LANG)")
		resume       = flag.Bool("resume", false, "skip PDFs whose output text already exists non-empty")
		logSkips     = flag.Bool("log-skips", false, "record resume skips in the CSV log")
		maxFiles     = flag.Int("max-files", 0, "process at most N files (0 = all)")
		startIndex   = flag.Int("start-index", 1, "1-based index of the first file to process")
		watchMode    = flag.Bool("watch", false, "after the batch, keep watching --input for new PDFs")
	)
	var skipPatterns, includePatterns multiFlag
	flag.Var(&skipPatterns, "skip-pattern", "case-insensitive regex; matching paths are skipped (repeatable)")
	flag.Var(&includePatterns, "include-pattern", "case-insensitive regex; only matching paths are processed (repeatable)")
	flag.Parse()

	if *input == "" || *output == "" {
		printError("Error: --input and --output are required\n")
		os.Exit(1)
	}
	if *logPath == "" {
		*logPath = filepath.Join(*output, "extraction_log.csv")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; environment always wins.
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if *ocrMode != "" {
		cfg.OCR.Mode = *ocrMode
	}
	if *minTextChars > 0 {
		cfg.OCR.MinTextChars = *minTextChars
	}
	if *dpi > 0 {
		cfg.OCR.DPI = *dpi
	}
	if *lang != "" {
		cfg.OCR.Lang = *lang
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	for _, bin := range []string{cfg.OCR.Pdftoppm, cfg.OCR.Tesseract} {
		if _, err := exec.LookPath(bin); err != nil {
			logger.Error("required binary not found on PATH", "binary", bin, "error", err)
			os.Exit(1)
		}
	}

	skips, err := corpus.CompilePatterns(skipPatterns)
	if err != nil {
		logger.Error("invalid --skip-pattern", "error", err)
		os.Exit(1)
	}
	includes, err := corpus.CompilePatterns(includePatterns)
	if err != nil {
		logger.Error("invalid --include-pattern", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stage := &extract.Stage{
		Extractor: extract.NewExtractor(cfg.OCR, logger),
		Log:       runlog.NewCSVLog(*logPath),
		Resume:    *resume,
		// Pattern skips always land in the log; --log-skips extends that to
		// resume skips.
		LogSkips: *logSkips || len(skipPatterns) > 0,
		Logger:   logger,
	}

	var store *runlog.Store
	if cfg.RunLog.DBPath != "" {
		store, err = runlog.Open(cfg.RunLog.DBPath, logger)
		if err != nil {
			logger.Error("failed to open run store", "path", cfg.RunLog.DBPath, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		runID, err := store.BeginRun(ctx, runlog.RunMeta{
			InputRoot:  *input,
			OutputRoot: *output,
			OCRMode:    cfg.OCR.Mode,
			DPI:        cfg.OCR.DPI,
		})
		if err != nil {
			logger.Error("failed to begin run", "error", err)
			os.Exit(1)
		}
		stage.Store = store
		stage.RunID = runID
	}

	allFiles, err := corpus.ListFiles(*input, constants.ExtPDF)
	if err != nil {
		logger.Error("failed to list input PDFs", "input", *input, "error", err)
		os.Exit(1)
	}
	if *startIndex < 1 {
		*startIndex = 1
	}
	if *startIndex > len(allFiles) {
		logger.Error("start index beyond file count", "start_index", *startIndex, "files", len(allFiles))
		os.Exit(1)
	}
	// Window first, then include filtering: --start-index counts positions in
	// the full sorted listing, not in the filtered one.
	files := corpus.Window(allFiles, *startIndex, *maxFiles)
	files = corpus.FilterInclude(files, includes)
	logger.Info("starting extraction",
		"input", *input,
		"output", *output,
		"files", len(files),
		"ocr_mode", cfg.OCR.Mode,
		"dpi", cfg.OCR.DPI,
		"resume", *resume)

	counts := map[string]int{}
	for i, pdfPath := range files {
		if ctx.Err() != nil {
			logger.Warn("interrupted", "processed", i, "remaining", len(files)-i)
			break
		}
		fmt.Printf("[%d/%d] %s\n", *startIndex+i, len(allFiles), pdfPath)
		status := processOne(ctx, stage, skips, *input, *output, pdfPath, logger)
		counts[status]++
	}

	if store != nil {
		if err := store.FinishRun(ctx, stage.RunID); err != nil {
			logger.Warn("failed to finish run", "error", err)
		}
	}
	logger.Info("extraction complete",
		"ok", counts["ok"],
		"partial", counts["partial"],
		"skipped", counts["skipped"],
		"errors", counts["error"],
		"log", *logPath)

	if !*watchMode {
		if counts["error"] > 0 {
			os.Exit(1)
		}
		return
	}

	paths, errs, err := watch.Start(ctx, watch.Config{
		Roots:    []string{*input},
		Debounce: cfg.Watch.Debounce,
	}, logger)
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}
	logger.Info("watching for new PDFs", "input", *input)
	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			processOne(ctx, stage, skips, *input, *output, p, logger)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// processOne maps a PDF to its output paths, resolves the skip reason, and
// runs the stage. Returns the outcome status for the run summary.
func processOne(ctx context.Context, stage *extract.Stage, skips []*regexp.Regexp, inputRoot, outputRoot, pdfPath string, logger *slog.Logger) string {
	rel, err := filepath.Rel(inputRoot, pdfPath)
	if err != nil {
		rel = filepath.Base(pdfPath)
	}
	base := strings.TrimSuffix(rel, filepath.Ext(rel))
	outputTxt := filepath.Join(outputRoot, base+".txt")
	outputMeta := filepath.Join(outputRoot, base+".json")

	skipReason := ""
	for _, pat := range skips {
		if pat.MatchString(pdfPath) {
			// Log the pattern as the user wrote it, without the (?i) prefix
			// CompilePatterns adds.
			skipReason = "skip_pattern:" + strings.TrimPrefix(pat.String(), "(?i)")
			break
		}
	}

	status, err := stage.ProcessPDF(ctx, pdfPath, outputTxt, outputMeta, skipReason)
	if err != nil {
		logger.Error("failed to record outcome", "path", pdfPath, "error", err)
		return "error"
	}
	if skipReason != "" {
		logger.Info("skipped by pattern", "path", pdfPath, "reason", skipReason)
	}
	return string(status)
}
