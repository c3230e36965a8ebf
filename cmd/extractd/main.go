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
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rcwhitaker/caseindex/internal/extract"
	"github.com/rcwhitaker/caseindex/internal/runlog"
	"github.com/rcwhitaker/caseindex/internal/watch"
)

func main() {
	configPath := flag.String("config", "", "YAML daemon config (required)")
	flag.Parse()

	// Logger
	zlogger, _ := zap.NewProduction()
	defer zlogger.Sync()
	log := zlogger.Sugar()

	if *configPath == "" {
		log.Fatal("--config is required")
	}
	_ = godotenv.Load()
	cfg, err := loadDaemonConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	for _, bin := range []string{cfg.OCR.Pdftoppm, cfg.OCR.Tesseract} {
		if _, err := exec.LookPath(bin); err != nil {
			log.Fatalf("required binary %q not found on PATH: %v", bin, err)
		}
	}

	// Context with signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The extraction services log through slog; the daemon lifecycle logs
	// through zap, like the other long-running binary.
	svcLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(svcLogger)

	stage := &extract.Stage{
		Extractor: extract.NewExtractor(cfg.ocr(), svcLogger),
		Log:       runlog.NewCSVLog(cfg.Log),
		Resume:    cfg.Resume,
		LogSkips:  true,
		Logger:    svcLogger,
	}

	if cfg.RunLogDB != "" {
		store, err := runlog.Open(cfg.RunLogDB, svcLogger)
		if err != nil {
			log.Fatalf("opening run store: %v", err)
		}
		defer store.Close()

		runID, err := store.BeginRun(ctx, runlog.RunMeta{
			InputRoot:  strings.Join(cfg.Roots, string(os.PathListSeparator)),
			OutputRoot: cfg.Output,
			OCRMode:    cfg.OCR.Mode,
			DPI:        cfg.OCR.DPI,
		})
		if err != nil {
			log.Fatalf("beginning run: %v", err)
		}
		stage.Store = store
		stage.RunID = runID
		defer func() {
			if err := store.FinishRun(context.Background(), runID); err != nil {
				log.Warnf("finishing run: %v", err)
			}
			if stats, err := store.RunStats(context.Background(), runID); err == nil {
				log.Infow("run summary", "stats", stats)
			}
		}()
	}

	paths, errs, err := watch.Start(ctx, watch.Config{
		Roots:       cfg.Roots,
		InitialScan: cfg.InitialScan,
		Debounce:    cfg.debounce,
	}, svcLogger)
	if err != nil {
		log.Fatalf("starting watcher: %v", err)
	}
	log.Infow("extraction daemon running",
		"roots", cfg.Roots,
		"output", cfg.Output,
		"ocr_mode", cfg.OCR.Mode,
		"resume", cfg.Resume)

	for paths != nil || errs != nil {
		select {
		case p, ok := <-paths:
			if !ok {
				paths = nil
				continue
			}
			status, err := stage.ProcessPDF(ctx, p, outputTxt(cfg, p), outputMeta(cfg, p), "")
			if err != nil {
				log.Errorw("recording outcome failed", "path", p, "error", err)
				continue
			}
			log.Infow("processed", "path", p, "status", string(status))
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Errorw("watcher error", "error", err)
		}
	}

	log.Info("shutting down...")
	fmt.Println("stopped.")
}

// outputTxt mirrors the PDF's path under its watch root into the output tree.
func outputTxt(cfg *daemonConfig, pdfPath string) string {
	return filepath.Join(cfg.Output, relBase(cfg, pdfPath)+".txt")
}

func outputMeta(cfg *daemonConfig, pdfPath string) string {
	return filepath.Join(cfg.Output, relBase(cfg, pdfPath)+".json")
}

func relBase(cfg *daemonConfig, pdfPath string) string {
	rel := filepath.Base(pdfPath)
	for _, root := range cfg.Roots {
		if r, err := filepath.Rel(root, pdfPath); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
			break
		}
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
