// Package radar scans extracted text corpora for issue keywords and reduces
// the hits into radar, timeline, and co-occurrence aggregates.
package radar

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rcwhitaker/caseindex/constants"
	"github.com/rcwhitaker/caseindex/internal/corpus"
	"github.com/rcwhitaker/caseindex/internal/dates"
	"github.com/rcwhitaker/caseindex/internal/tags"
)

// Corpus is one scanned document set: extracted text plus the PDFs it came
// from (the PDF paths appear in reports; only the text is read).
type Corpus struct {
	Name     string
	TextRoot string
	PDFRoot  string
}

// RadarRow is the per-corpus frequency summary for one issue.
type RadarRow struct {
	Corpus       string
	Issue        string
	DocsWithHits int
	TotalHits    int
	PctDocs      float64
}

// OverallRow sums an issue across all corpora.
type OverallRow struct {
	Issue        string
	DocsWithHits int
	TotalHits    int
	PctDocs      float64
}

// IssueDocRow maps one issue to one document that mentions it.
type IssueDocRow struct {
	Corpus    string
	Issue     string
	SourcePDF string
	SourceTxt string
	Date      string // ISO date or "" for undated
	HitCount  int
}

// MonthRow buckets an issue's dated documents by YYYY-MM.
type MonthRow struct {
	Corpus   string
	Month    string
	Issue    string
	DocCount int
	HitCount int
}

// CoRow counts documents where two issues both register at least one hit.
// Pairs are stored with IssueA < IssueB; co-occurrence is symmetric.
type CoRow struct {
	IssueA   string
	IssueB   string
	DocCount int
}

// Aggregate holds everything the report renderers need.
type Aggregate struct {
	CorpusNames  []string
	DocCounts    map[string]int // corpus -> documents scanned
	RadarRows    []RadarRow
	OverallRows  []OverallRow
	IssueDocRows []IssueDocRow
	MonthRows    []MonthRow
	CoRows       []CoRow
}

// Builder runs the scan.
type Builder struct {
	Dict         *tags.Dictionary
	Bounds       dates.Bounds
	SkipPatterns []*regexp.Regexp
	Logger       *slog.Logger
}

func NewBuilder(dict *tags.Dictionary, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{Dict: dict, Bounds: dates.DefaultBounds, Logger: logger}
}

type monthKey struct {
	corpus, month, issue string
}

type pairKey struct {
	a, b string
}

// Build scans every corpus and reduces per-document hit maps into the
// aggregate tables. All counts are recomputed from the text on each call;
// nothing is carried over between runs.
func (b *Builder) Build(corpora []Corpus) (*Aggregate, error) {
	agg := &Aggregate{DocCounts: make(map[string]int)}

	issueTotals := make(map[string]map[string]int)    // corpus -> issue -> hits
	issueDocCounts := make(map[string]map[string]int) // corpus -> issue -> docs
	monthAgg := make(map[monthKey]*MonthRow)
	cooccurrence := make(map[pairKey]int)

	for _, c := range corpora {
		agg.CorpusNames = append(agg.CorpusNames, c.Name)
		issueTotals[c.Name] = make(map[string]int)
		issueDocCounts[c.Name] = make(map[string]int)

		files, err := corpus.ListFiles(c.TextRoot, constants.ExtText)
		if err != nil {
			return nil, fmt.Errorf("corpus %s: %w", c.Name, err)
		}

		for _, txtPath := range files {
			rel, err := filepath.Rel(c.TextRoot, txtPath)
			if err != nil {
				rel = txtPath
			}
			sourcePDF := filepath.Join(c.PDFRoot, strings.TrimSuffix(rel, filepath.Ext(rel))+".pdf")
			if corpus.MatchAny(b.SkipPatterns, sourcePDF+" "+txtPath) {
				continue
			}

			date, dated := dates.FromName(rel, b.Bounds)
			month := ""
			if dated {
				month = dates.Month(date)
			}
			agg.DocCounts[c.Name]++

			body := corpus.LoadBody(txtPath)
			if body == "" {
				continue
			}

			hits := b.Dict.CountHits(body)
			if len(hits) == 0 {
				continue
			}

			dateStr := ""
			if dated {
				dateStr = date.Format("2006-01-02")
			}

			present := make([]string, 0, len(hits))
			for _, issue := range b.Dict.Names() {
				count, ok := hits[issue]
				if !ok {
					continue
				}
				present = append(present, issue)
				issueTotals[c.Name][issue] += count
				issueDocCounts[c.Name][issue]++

				agg.IssueDocRows = append(agg.IssueDocRows, IssueDocRow{
					Corpus:    c.Name,
					Issue:     issue,
					SourcePDF: sourcePDF,
					SourceTxt: txtPath,
					Date:      dateStr,
					HitCount:  count,
				})

				if month != "" {
					key := monthKey{c.Name, month, issue}
					row, ok := monthAgg[key]
					if !ok {
						row = &MonthRow{Corpus: c.Name, Month: month, Issue: issue}
						monthAgg[key] = row
					}
					row.DocCount++
					row.HitCount += count
				}
			}

			sort.Strings(present)
			for i := 0; i < len(present); i++ {
				for j := i + 1; j < len(present); j++ {
					cooccurrence[pairKey{present[i], present[j]}]++
				}
			}
		}
	}

	totalDocs := 0
	for _, c := range corpora {
		totalDocs += agg.DocCounts[c.Name]
		corpusDocs := agg.DocCounts[c.Name]
		for _, issue := range b.Dict.Names() {
			agg.RadarRows = append(agg.RadarRows, RadarRow{
				Corpus:       c.Name,
				Issue:        issue,
				DocsWithHits: issueDocCounts[c.Name][issue],
				TotalHits:    issueTotals[c.Name][issue],
				PctDocs:      round4(ratio(issueDocCounts[c.Name][issue], corpusDocs)),
			})
		}
	}

	for _, issue := range b.Dict.Names() {
		docsWith, totalHits := 0, 0
		for _, c := range corpora {
			docsWith += issueDocCounts[c.Name][issue]
			totalHits += issueTotals[c.Name][issue]
		}
		agg.OverallRows = append(agg.OverallRows, OverallRow{
			Issue:        issue,
			DocsWithHits: docsWith,
			TotalHits:    totalHits,
			PctDocs:      round4(ratio(docsWith, totalDocs)),
		})
	}

	for _, row := range monthAgg {
		agg.MonthRows = append(agg.MonthRows, *row)
	}
	sort.Slice(agg.MonthRows, func(i, j int) bool {
		a, c := agg.MonthRows[i], agg.MonthRows[j]
		if a.Corpus != c.Corpus {
			return a.Corpus < c.Corpus
		}
		if a.Month != c.Month {
			return a.Month < c.Month
		}
		return a.Issue < c.Issue
	})

	for key, count := range cooccurrence {
		agg.CoRows = append(agg.CoRows, CoRow{IssueA: key.a, IssueB: key.b, DocCount: count})
	}
	sort.Slice(agg.CoRows, func(i, j int) bool {
		a, c := agg.CoRows[i], agg.CoRows[j]
		if a.DocCount != c.DocCount {
			return a.DocCount > c.DocCount
		}
		if a.IssueA != c.IssueA {
			return a.IssueA < c.IssueA
		}
		return a.IssueB < c.IssueB
	})

	b.Logger.Info("radar.build.done",
		"corpora", len(corpora),
		"docs", totalDocs,
		"issue_doc_rows", len(agg.IssueDocRows),
		"cooccurrence_pairs", len(agg.CoRows),
	)
	return agg, nil
}

// ratio guards the zero-document corpus: pct_docs is 0, not NaN.
func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
