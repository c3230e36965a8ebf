package radar

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rcwhitaker/caseindex/internal/corpus"
	"github.com/rcwhitaker/caseindex/internal/tags"
)

func writeDoc(t *testing.T, root, name, body string) {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	content := strings.Join([]string{
		"FILE: " + name,
		"PAGES: 1",
		"OCR_MODE: always",
		"DPI: 300",
		strings.Repeat("=", 80),
		"",
		"=== PAGE 1 ===",
		"--- EXTRACTED TEXT ---",
		body,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testDict(t *testing.T) *tags.Dictionary {
	t.Helper()
	d, err := tags.New(map[string][]string{
		"mandamus": {`\bmandamus\b`},
		"recusal":  {`\brecusal\b`, `\brecuse\b`},
		"notice":   {`\bnotice\b`},
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func buildFixture(t *testing.T) (*Aggregate, []Corpus) {
	t.Helper()
	caseRoot := t.TempDir()
	researchRoot := t.TempDir()

	writeDoc(t, caseRoot, "04.08.24 - Mandamus Filed-1.txt",
		"Petition for writ of mandamus. The mandamus record shows no recusal hearing.")
	writeDoc(t, caseRoot, "04.15.24 - Motion to Recuse.txt",
		"Motion to recuse. Notice of recusal referral attached, with notice to all parties.")
	writeDoc(t, caseRoot, "TRIAL BY AMBUSH.txt",
		"No notice was given before the hearing.")
	writeDoc(t, caseRoot, "01.01.1889 - Old Ledger.txt",
		"mandamus mentioned in an out-of-bounds year.")
	// A document with no hits at all still counts as scanned.
	writeDoc(t, caseRoot, "05.01.24 - Inventory.txt", "household goods list")

	writeDoc(t, researchRoot, "vlex memo mandamus standards.txt",
		"Mandamus requires a clear abuse of discretion. mandamus mandamus")

	corpora := []Corpus{
		{Name: "case", TextRoot: caseRoot, PDFRoot: "CASE DOCS"},
		{Name: "research", TextRoot: researchRoot, PDFRoot: "RESEARCH"},
	}
	agg, err := NewBuilder(testDict(t), nil).Build(corpora)
	if err != nil {
		t.Fatal(err)
	}
	return agg, corpora
}

func radarFor(agg *Aggregate, corpusName, issue string) RadarRow {
	for _, r := range agg.RadarRows {
		if r.Corpus == corpusName && r.Issue == issue {
			return r
		}
	}
	return RadarRow{}
}

func TestBuildCounts(t *testing.T) {
	agg, _ := buildFixture(t)

	if agg.DocCounts["case"] != 5 || agg.DocCounts["research"] != 1 {
		t.Fatalf("doc counts = %v", agg.DocCounts)
	}

	// Case corpus: mandamus appears in doc 1 (x2) and the 1889 doc (x1).
	m := radarFor(agg, "case", "mandamus")
	if m.DocsWithHits != 2 || m.TotalHits != 3 {
		t.Errorf("case mandamus = %+v", m)
	}
	if m.PctDocs != 0.4 {
		t.Errorf("case mandamus pct = %v, want 0.4", m.PctDocs)
	}

	// recusal: doc 1 has "recusal" (1), doc 2 has "recuse" + "recusal" (2 hits).
	r := radarFor(agg, "case", "recusal")
	if r.DocsWithHits != 2 || r.TotalHits != 3 {
		t.Errorf("case recusal = %+v", r)
	}

	rm := radarFor(agg, "research", "mandamus")
	if rm.DocsWithHits != 1 || rm.TotalHits != 3 {
		t.Errorf("research mandamus = %+v", rm)
	}

	for _, o := range agg.OverallRows {
		if o.Issue == "mandamus" {
			if o.DocsWithHits != 3 || o.TotalHits != 6 {
				t.Errorf("overall mandamus = %+v", o)
			}
		}
	}
}

func TestCooccurrenceSymmetricPairs(t *testing.T) {
	agg, _ := buildFixture(t)

	// Stored pairs are normalized IssueA < IssueB, so each unordered pair
	// appears exactly once: that is the symmetry invariant.
	seen := map[string]int{}
	for _, co := range agg.CoRows {
		if co.IssueA >= co.IssueB {
			t.Errorf("pair not normalized: %q >= %q", co.IssueA, co.IssueB)
		}
		seen[co.IssueA+"|"+co.IssueB] = co.DocCount
	}
	// mandamus+recusal co-occur in doc 1 only.
	if seen["mandamus|recusal"] != 1 {
		t.Errorf("mandamus|recusal = %d, want 1", seen["mandamus|recusal"])
	}
	// notice+recusal co-occur in doc 2.
	if seen["notice|recusal"] != 1 {
		t.Errorf("notice|recusal = %d, want 1", seen["notice|recusal"])
	}
	if _, dup := seen["recusal|mandamus"]; dup {
		t.Error("reversed duplicate pair present")
	}
}

func TestMonthlyBucketsRespectDateBounds(t *testing.T) {
	agg, _ := buildFixture(t)

	months := map[string]bool{}
	for _, m := range agg.MonthRows {
		months[m.Month] = true
		if m.Corpus != "case" && m.Corpus != "research" {
			t.Errorf("unexpected corpus %q", m.Corpus)
		}
	}
	if !months["2024-04"] {
		t.Error("2024-04 bucket missing")
	}
	// The 1889 document and undated documents never reach monthly buckets.
	for month := range months {
		if strings.HasPrefix(month, "1889") || strings.HasPrefix(month, "3889") {
			t.Errorf("out-of-bounds month bucket %q", month)
		}
	}

	// mandamus in 2024-04 for the case corpus: one doc, two hits.
	for _, m := range agg.MonthRows {
		if m.Corpus == "case" && m.Month == "2024-04" && m.Issue == "mandamus" {
			if m.DocCount != 1 || m.HitCount != 2 {
				t.Errorf("2024-04 mandamus = %+v", m)
			}
		}
	}

	// Undated docs keep their listings in the doc map.
	foundUndated := false
	for _, r := range agg.IssueDocRows {
		if strings.Contains(r.SourceTxt, "TRIAL BY AMBUSH") {
			foundUndated = true
			if r.Date != "" {
				t.Errorf("undated doc has date %q", r.Date)
			}
		}
	}
	if !foundUndated {
		t.Error("undated document missing from doc map")
	}
}

func TestBuildSkipPatterns(t *testing.T) {
	caseRoot := t.TempDir()
	writeDoc(t, caseRoot, "04.08.24 - Mandamus Filed-1.txt", "mandamus")
	writeDoc(t, caseRoot, "04.09.24 - DRAFT mandamus.txt", "mandamus")

	patterns, err := corpus.CompilePatterns([]string{"draft"})
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(testDict(t), nil)
	b.SkipPatterns = patterns
	agg, err := b.Build([]Corpus{{Name: "case", TextRoot: caseRoot, PDFRoot: "CASE DOCS"}})
	if err != nil {
		t.Fatal(err)
	}
	if agg.DocCounts["case"] != 1 {
		t.Errorf("doc count = %d, want 1 (draft skipped)", agg.DocCounts["case"])
	}
}

func TestBuildDeterministic(t *testing.T) {
	agg1, corpora := buildFixture(t)
	agg2, err := NewBuilder(testDict(t), nil).Build(corpora)
	if err != nil {
		t.Fatal(err)
	}
	if len(agg1.CoRows) != len(agg2.CoRows) {
		t.Fatalf("co rows differ: %d vs %d", len(agg1.CoRows), len(agg2.CoRows))
	}
	for i := range agg1.CoRows {
		if agg1.CoRows[i] != agg2.CoRows[i] {
			t.Errorf("co row %d differs: %+v vs %+v", i, agg1.CoRows[i], agg2.CoRows[i])
		}
	}
	for i := range agg1.MonthRows {
		if agg1.MonthRows[i] != agg2.MonthRows[i] {
			t.Errorf("month row %d differs", i)
		}
	}
}

func TestWriteCSVReports(t *testing.T) {
	agg, _ := buildFixture(t)
	outDir := t.TempDir()
	if err := WriteCSVReports(outDir, agg); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"issue_radar_case.csv",
		"issue_radar_research.csv",
		"issue_radar_overall.csv",
		"issue_doc_map.csv",
		"issue_month_map.csv",
		"issue_cooccurrence.csv",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(outDir, "issue_cooccurrence.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if records[0][0] != "issue_a" || records[0][2] != "doc_count" {
		t.Errorf("co-occurrence header = %v", records[0])
	}
	// Rows are sorted by doc_count descending.
	last := 1 << 30
	for _, rec := range records[1:] {
		count, err := strconv.Atoi(rec[2])
		if err != nil {
			t.Fatalf("bad count %q", rec[2])
		}
		if count > last {
			t.Error("co-occurrence rows not sorted by count desc")
		}
		last = count
	}
}

func TestWriteMarkdownReports(t *testing.T) {
	agg, _ := buildFixture(t)
	outDir := t.TempDir()
	if err := WriteMarkdownReports(outDir, agg, testDict(t).Names()); err != nil {
		t.Fatal(err)
	}

	radarMD, err := os.ReadFile(filepath.Join(outDir, "issue_radar.md"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# Issue Radar (Document-Derived)",
		"Case docs scanned: 5",
		"Research docs scanned: 1",
		"## Case Issue Radar (by documents with hits)",
		"mandamus: 2 docs (40.0%), 3 hits",
	} {
		if !strings.Contains(string(radarMD), want) {
			t.Errorf("issue_radar.md missing %q", want)
		}
	}

	argMD, err := os.ReadFile(filepath.Join(outDir, "issue_argument_map.md"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"## mandamus",
		"undated:",
		"(hits: 2)",
		"no keyword hits found.",
	} {
		if !strings.Contains(string(argMD), want) {
			t.Errorf("issue_argument_map.md missing %q", want)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	agg, _ := buildFixture(t)
	data, err := WriteWorkbook(agg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}
	// XLSX files are zip archives.
	if data[0] != 'P' || data[1] != 'K' {
		t.Error("workbook is not a zip archive")
	}
}
