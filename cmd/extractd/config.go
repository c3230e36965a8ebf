package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcwhitaker/caseindex/internal/common"
)

// daemonConfig is the YAML file the daemon runs from. Environment defaults
// (common.LoadConfig) fill anything the file leaves unset.
type daemonConfig struct {
	Roots       []string  `yaml:"roots"`
	Output      string    `yaml:"output"`
	Log         string    `yaml:"log"`
	RunLogDB    string    `yaml:"runlog_db"`
	Debounce    string    `yaml:"debounce"` // Go duration string, e.g. "2s"
	Resume      bool      `yaml:"resume"`
	InitialScan bool      `yaml:"initial_scan"`
	OCR         ocrConfig `yaml:"ocr"`

	debounce time.Duration
}

type ocrConfig struct {
	Mode         string `yaml:"mode"`
	DPI          int    `yaml:"dpi"`
	Lang         string `yaml:"lang"`
	MinTextChars int    `yaml:"min_text_chars"`
	Pdftoppm     string `yaml:"pdftoppm"`
	Tesseract    string `yaml:"tesseract"`
}

func loadDaemonConfig(path string) (*daemonConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	env := common.LoadConfig()
	cfg := &daemonConfig{
		Resume:      true,
		InitialScan: true,
		RunLogDB:    env.RunLog.DBPath,
		OCR: ocrConfig{
			Mode:         env.OCR.Mode,
			DPI:          env.OCR.DPI,
			Lang:         env.OCR.Lang,
			MinTextChars: env.OCR.MinTextChars,
			Pdftoppm:     env.OCR.Pdftoppm,
			Tesseract:    env.OCR.Tesseract,
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Roots) == 0 {
		return nil, fmt.Errorf("config: at least one watch root is required")
	}
	if cfg.Output == "" {
		return nil, fmt.Errorf("config: output is required")
	}
	if cfg.Log == "" {
		cfg.Log = filepath.Join(cfg.Output, "extraction_log.csv")
	}
	if cfg.OCR.Mode != "always" && cfg.OCR.Mode != "auto" {
		return nil, fmt.Errorf("config: ocr.mode must be \"always\" or \"auto\", got %q", cfg.OCR.Mode)
	}
	cfg.debounce = env.Watch.Debounce
	if cfg.Debounce != "" {
		d, err := time.ParseDuration(cfg.Debounce)
		if err != nil {
			return nil, fmt.Errorf("config: invalid debounce %q: %w", cfg.Debounce, err)
		}
		cfg.debounce = d
	}
	return cfg, nil
}

func (c *daemonConfig) ocr() common.OCRConfig {
	return common.OCRConfig{
		Pdftoppm:     c.OCR.Pdftoppm,
		Tesseract:    c.OCR.Tesseract,
		Lang:         c.OCR.Lang,
		DPI:          c.OCR.DPI,
		Mode:         c.OCR.Mode,
		MinTextChars: c.OCR.MinTextChars,
	}
}
