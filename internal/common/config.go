package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all pipeline configuration
type Config struct {
	OCR    OCRConfig
	RunLog RunLogConfig
	Watch  WatchConfig
}

// OCRConfig holds extraction-related configuration
type OCRConfig struct {
	Pdftoppm     string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract    string // binary name or absolute path; if empty -> "tesseract"
	Lang         string // tesseract language(s), e.g. "eng" or "eng+spa"
	DPI          int    // render DPI for OCR images
	Mode         string // "always" or "auto"
	MinTextChars int    // auto mode: minimum text-layer chars before skipping OCR
}

// RunLogConfig holds run-history configuration
type RunLogConfig struct {
	DBPath string // SQLite run-history database; empty disables the store
}

// WatchConfig holds watch-daemon configuration
type WatchConfig struct {
	Debounce time.Duration // coalesce rapid filesystem event bursts
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftoppm:     getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:    getEnv("TESSERACT_BIN", "tesseract"),
			Lang:         getEnv("OCR_LANG", "eng"),
			DPI:          getEnvAsInt("OCR_DPI", 300),
			Mode:         getEnv("OCR_MODE", "always"),
			MinTextChars: getEnvAsInt("OCR_MIN_TEXT_CHARS", 50),
		},
		RunLog: RunLogConfig{
			DBPath: getEnv("RUNLOG_DB", ""),
		},
		Watch: WatchConfig{
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.OCR.Mode != "always" && c.OCR.Mode != "auto" {
		return NewAppError("CONFIG_ERROR", "OCR_MODE must be \"always\" or \"auto\"", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
