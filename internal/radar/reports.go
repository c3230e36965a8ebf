package radar

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// WriteCSVReports writes the aggregate tables under outDir using the
// historical file names and column orders (downstream tooling reads these).
func WriteCSVReports(outDir string, agg *Aggregate) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", outDir, err)
	}

	radarFields := []string{"corpus", "issue", "docs_with_hits", "total_hits", "pct_docs"}
	for _, name := range agg.CorpusNames {
		var rows [][]string
		for _, r := range agg.RadarRows {
			if r.Corpus != name {
				continue
			}
			rows = append(rows, []string{r.Corpus, r.Issue, itoa(r.DocsWithHits), itoa(r.TotalHits), ftoa(r.PctDocs)})
		}
		path := filepath.Join(outDir, fmt.Sprintf("issue_radar_%s.csv", name))
		if err := writeCSV(path, radarFields, rows); err != nil {
			return err
		}
	}

	var overall [][]string
	for _, r := range agg.OverallRows {
		overall = append(overall, []string{r.Issue, itoa(r.DocsWithHits), itoa(r.TotalHits), ftoa(r.PctDocs)})
	}
	if err := writeCSV(filepath.Join(outDir, "issue_radar_overall.csv"),
		[]string{"issue", "docs_with_hits", "total_hits", "pct_docs"}, overall); err != nil {
		return err
	}

	var docRows [][]string
	for _, r := range agg.IssueDocRows {
		docRows = append(docRows, []string{r.Corpus, r.Issue, r.SourcePDF, r.SourceTxt, r.Date, itoa(r.HitCount)})
	}
	if err := writeCSV(filepath.Join(outDir, "issue_doc_map.csv"),
		[]string{"corpus", "issue", "source_pdf", "source_txt", "date", "hit_count"}, docRows); err != nil {
		return err
	}

	var monthRows [][]string
	for _, r := range agg.MonthRows {
		monthRows = append(monthRows, []string{r.Corpus, r.Month, r.Issue, itoa(r.DocCount), itoa(r.HitCount)})
	}
	if err := writeCSV(filepath.Join(outDir, "issue_month_map.csv"),
		[]string{"corpus", "month", "issue", "doc_count", "hit_count"}, monthRows); err != nil {
		return err
	}

	var coRows [][]string
	for _, r := range agg.CoRows {
		coRows = append(coRows, []string{r.IssueA, r.IssueB, itoa(r.DocCount)})
	}
	return writeCSV(filepath.Join(outDir, "issue_cooccurrence.csv"),
		[]string{"issue_a", "issue_b", "doc_count"}, coRows)
}

// WriteMarkdownReports writes issue_radar.md and issue_argument_map.md.
func WriteMarkdownReports(outDir string, agg *Aggregate, issues []string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", outDir, err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "issue_radar.md"), []byte(renderRadarMD(agg)), 0o644); err != nil {
		return fmt.Errorf("write issue_radar.md: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "issue_argument_map.md"), []byte(renderArgumentMapMD(agg, issues)), 0o644); err != nil {
		return fmt.Errorf("write issue_argument_map.md: %w", err)
	}
	return nil
}

func renderRadarMD(agg *Aggregate) string {
	var b strings.Builder
	b.WriteString("# Issue Radar (Document-Derived)\n\n")
	b.WriteString("This is a keyword-based index for navigation, not legal advice.\n\n")
	for _, name := range agg.CorpusNames {
		fmt.Fprintf(&b, "%s docs scanned: %d\n", titleCase(name), agg.DocCounts[name])
	}
	b.WriteString("\n")

	for _, name := range agg.CorpusNames {
		fmt.Fprintf(&b, "## %s Issue Radar (by documents with hits)\n\n", titleCase(name))
		rows := make([]RadarRow, 0)
		for _, r := range agg.RadarRows {
			if r.Corpus == name {
				rows = append(rows, r)
			}
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].DocsWithHits != rows[j].DocsWithHits {
				return rows[i].DocsWithHits > rows[j].DocsWithHits
			}
			return rows[i].Issue < rows[j].Issue
		})
		totalDocs := agg.DocCounts[name]
		for _, r := range rows {
			pct := ratio(r.DocsWithHits, totalDocs)
			fmt.Fprintf(&b, "- %s: %d docs (%.1f%%), %d hits | %s\n",
				r.Issue, r.DocsWithHits, pct*100, r.TotalHits, bar(pct))
		}
		b.WriteString("\n")
	}

	b.WriteString("Outputs:\n")
	for _, name := range agg.CorpusNames {
		fmt.Fprintf(&b, "- reports/issue_radar_%s.csv\n", name)
	}
	b.WriteString("- reports/issue_radar_overall.csv\n")
	b.WriteString("- reports/issue_doc_map.csv\n")
	b.WriteString("- reports/issue_month_map.csv\n")
	b.WriteString("- reports/issue_cooccurrence.csv\n")
	return b.String()
}

func renderArgumentMapMD(agg *Aggregate, issues []string) string {
	var b strings.Builder
	b.WriteString("# Document-Derived Analysis and Argument Map\n\n")
	b.WriteString("This is a document-derived indexing map, not legal advice.\n")
	b.WriteString("It highlights where issues are discussed in the record and research.\n\n")

	for _, issue := range issues {
		fmt.Fprintf(&b, "## %s\n\n", issue)
		for _, name := range agg.CorpusNames {
			rows := make([]IssueDocRow, 0)
			for _, r := range agg.IssueDocRows {
				if r.Corpus == name && r.Issue == issue {
					rows = append(rows, r)
				}
			}
			sort.Slice(rows, func(i, j int) bool {
				if rows[i].HitCount != rows[j].HitCount {
					return rows[i].HitCount > rows[j].HitCount
				}
				return rows[i].SourcePDF < rows[j].SourcePDF
			})
			label := titleCase(name)
			if len(rows) == 0 {
				fmt.Fprintf(&b, "%s docs: no keyword hits found.\n\n", label)
				continue
			}
			fmt.Fprintf(&b, "%s docs (top 5 by keyword hits):\n", label)
			if len(rows) > 5 {
				rows = rows[:5]
			}
			for _, r := range rows {
				date := r.Date
				if date == "" {
					date = "undated"
				}
				fmt.Fprintf(&b, "- %s: %s (hits: %d)\n", date, asciiSafe(r.SourcePDF), r.HitCount)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("write row %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// bar renders the radar strength rule: one # per 2.5% of docs.
func bar(pct float64) string {
	blocks := int(math.Round(pct * 40))
	if blocks < 0 {
		blocks = 0
	}
	return strings.Repeat("#", blocks)
}

// asciiSafe drops non-ASCII runes; OCR noise in filenames breaks some
// downstream Markdown viewers.
func asciiSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 127 {
			return -1
		}
		return r
	}, s)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func itoa(n int) string { return strconv.Itoa(n) }

// ftoa matches the historical pct_docs formatting (round to 4 places, no
// trailing zeros).
func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
