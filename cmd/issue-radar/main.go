package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcwhitaker/caseindex/constants"
	"github.com/rcwhitaker/caseindex/internal/corpus"
	"github.com/rcwhitaker/caseindex/internal/radar"
	"github.com/rcwhitaker/caseindex/internal/tags"
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
		caseText     = flag.String("case-text", "", "extracted text root for the case corpus (required)")
		casePDF      = flag.String("case-pdf", "", "source PDF root for the case corpus (required)")
		researchText = flag.String("research-text", "", "extracted text root for the research corpus")
		researchPDF  = flag.String("research-pdf", "", "source PDF root for the research corpus")
		outDir       = flag.String("out-dir", "reports", "directory for reports")
		tagsPath     = flag.String("tags", "", "JSON tag dictionary (defaults to the built-in issue set)")
		xlsx         = flag.Bool("xlsx", false, "also write issue_radar.xlsx")
	)
	var skipPatterns multiFlag
	flag.Var(&skipPatterns, "skip-pattern", "case-insensitive regex; matching documents are skipped (repeatable)")
	flag.Parse()

	if *caseText == "" || *casePDF == "" {
		printError("Error: --case-text and --case-pdf are required\n")
		os.Exit(1)
	}
	if (*researchText == "") != (*researchPDF == "") {
		printError("Error: --research-text and --research-pdf go together\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dict := tags.Builtin()
	if *tagsPath != "" {
		loaded, err := tags.Load(*tagsPath)
		if err != nil {
			logger.Error("failed to load tag dictionary", "path", *tagsPath, "error", err)
			os.Exit(1)
		}
		dict = loaded
		logger.Info("using external tag dictionary", "path", *tagsPath, "tags", len(dict.Names()))
	}

	skips, err := corpus.CompilePatterns(skipPatterns)
	if err != nil {
		logger.Error("invalid --skip-pattern", "error", err)
		os.Exit(1)
	}

	corpora := []radar.Corpus{
		{Name: constants.CorpusCase, TextRoot: *caseText, PDFRoot: *casePDF},
	}
	if *researchText != "" {
		corpora = append(corpora, radar.Corpus{
			Name: constants.CorpusResearch, TextRoot: *researchText, PDFRoot: *researchPDF,
		})
	}

	builder := radar.NewBuilder(dict, logger)
	builder.SkipPatterns = skips
	agg, err := builder.Build(corpora)
	if err != nil {
		logger.Error("failed to scan corpora", "error", err)
		os.Exit(1)
	}

	if err := radar.WriteCSVReports(*outDir, agg); err != nil {
		logger.Error("failed to write CSV reports", "error", err)
		os.Exit(1)
	}
	if err := radar.WriteMarkdownReports(*outDir, agg, dict.Names()); err != nil {
		logger.Error("failed to write Markdown reports", "error", err)
		os.Exit(1)
	}
	if *xlsx {
		data, err := radar.WriteWorkbook(agg, logger)
		if err != nil {
			logger.Error("failed to build workbook", "error", err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, "issue_radar.xlsx")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Error("failed to write workbook", "path", path, "error", err)
			os.Exit(1)
		}
	}

	logger.Info("reports written", "out_dir", *outDir, "corpora", len(corpora))
	for _, name := range agg.CorpusNames {
		fmt.Printf("%s docs scanned: %d\n", name, agg.DocCounts[name])
	}
	fmt.Printf("Reports written to %s\n", *outDir)
}
