package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rcwhitaker/caseindex/internal/mentions"
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
	var inputs multiFlag
	flag.Var(&inputs, "input", "extracted-text root to scan (repeatable; defaults to extracted_text_full)")
	output := flag.String("output", "reports/case_mentions", "directory for mention outputs")
	flag.Parse()

	if len(inputs) == 0 {
		inputs = multiFlag{"extracted_text_full"}
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	roots, err := mentions.ResolveRoots(inputs)
	if err != nil {
		printError("Error: no valid input roots found\n")
		os.Exit(1)
	}

	found, err := mentions.NewCollector(logger).Collect(roots)
	if err != nil {
		logger.Error("failed to collect mentions", "error", err)
		os.Exit(1)
	}

	if err := mentions.WriteOutputs(*output, roots, found); err != nil {
		logger.Error("failed to write outputs", "error", err)
		os.Exit(1)
	}

	logger.Info("mention extraction complete",
		"inputs", roots,
		"mentions", len(found),
		"output", *output)
	fmt.Printf("Extracted %d case mentions to %s\n", len(found), *output)
}
