// Package mentions extracts case-law citations from extracted document text.
package mentions

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var (
	reporterPattern = regexp.MustCompile(
		`\b\d{1,4}\s+(S\.W\.3d|S\.W\.2d|S\.W\.|U\.S\.|F\.3d|F\.2d|F\. Supp\. 2d|F\. Supp\.|S\. Ct\.|L\. Ed\. 2d|L\. Ed\.)\s+\d+\b`)
	caseNamePattern = regexp.MustCompile(`\b[A-Z][A-Za-z.&'-]{2,}\s+v\.?\s+[A-Z][A-Za-z.&'-]{2,}\b`)
	inRePattern     = regexp.MustCompile(`\bIn re\s+[A-Z][A-Za-z.&'-]{2,}\b`)
	exPartePattern  = regexp.MustCompile(`\bEx parte\s+[A-Z][A-Za-z.&'-]{2,}\b`)

	collapseWS = regexp.MustCompile(`\s+`)
)

// Mention is one case-name/reporter sighting on a single line.
type Mention struct {
	CaseName  string
	Reporter  string
	SourceTxt string
	LineNo    int
	Context   string
}

// Record is the serializable form of a Mention, keyed by a content hash so
// re-runs over the same corpus produce identical IDs.
type Record struct {
	ID        string `json:"id"`
	CaseName  string `json:"case_name"`
	Reporter  string `json:"reporter"`
	SourceTxt string `json:"source_txt"`
	LineNo    int    `json:"line_no"`
	Context   string `json:"context"`
	Text      string `json:"text"`
}

func normalizeCaseName(s string) string {
	return collapseWS.ReplaceAllString(strings.Trim(s, " ,.;:)("), " ")
}

func normalizeReporter(s string) string {
	return strings.Trim(s, " ,.;:)(")
}

// Extract scans lines for citations. When a line carries both case names and
// reporter citations, every name is paired with every reporter; otherwise
// each is emitted alone.
func Extract(lines []string, sourceTxt string) []Mention {
	var out []Mention
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1

		var reporters []string
		for _, m := range reporterPattern.FindAllString(line, -1) {
			reporters = append(reporters, normalizeReporter(m))
		}
		var caseNames []string
		for _, pat := range []*regexp.Regexp{caseNamePattern, inRePattern, exPartePattern} {
			for _, m := range pat.FindAllString(line, -1) {
				caseNames = append(caseNames, normalizeCaseName(m))
			}
		}

		if len(reporters) == 0 && len(caseNames) == 0 {
			continue
		}

		context := strings.TrimSpace(line)
		if len(caseNames) > 0 && len(reporters) > 0 {
			for _, name := range caseNames {
				for _, rep := range reporters {
					out = append(out, Mention{CaseName: name, Reporter: rep, SourceTxt: sourceTxt, LineNo: lineNo, Context: context})
				}
			}
			continue
		}
		for _, name := range caseNames {
			out = append(out, Mention{CaseName: name, SourceTxt: sourceTxt, LineNo: lineNo, Context: context})
		}
		for _, rep := range reporters {
			out = append(out, Mention{Reporter: rep, SourceTxt: sourceTxt, LineNo: lineNo, Context: context})
		}
	}
	return out
}

// BuildPayload renders the plain-text block stored alongside each record.
func BuildPayload(m Mention) string {
	caseName := m.CaseName
	if caseName == "" {
		caseName = "N/A"
	}
	reporter := m.Reporter
	if reporter == "" {
		reporter = "N/A"
	}
	return strings.Join([]string{
		"CASE_NAME: " + caseName,
		"REPORTER: " + reporter,
		"SOURCE_FILE: " + m.SourceTxt,
		fmt.Sprintf("LINE_NUMBER: %d", m.LineNo),
		"CONTEXT:",
		m.Context,
	}, "\n")
}

// BuildRecord derives the stable record for a mention.
func BuildRecord(m Mention) Record {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s:%d:%s:%s:%s", m.SourceTxt, m.LineNo, m.CaseName, m.Reporter, m.Context)))
	return Record{
		ID:        hex.EncodeToString(sum[:]),
		CaseName:  m.CaseName,
		Reporter:  m.Reporter,
		SourceTxt: m.SourceTxt,
		LineNo:    m.LineNo,
		Context:   m.Context,
		Text:      BuildPayload(m),
	}
}
