package mentions

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rcwhitaker/caseindex/constants"
	"github.com/rcwhitaker/caseindex/internal/common"
	"github.com/rcwhitaker/caseindex/internal/corpus"
)

// ResolveRoots keeps the input roots that exist as directories. Missing
// roots are tolerated one by one, but an empty result is an error.
func ResolveRoots(roots []string) ([]string, error) {
	var out []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		out = append(out, root)
	}
	if len(out) == 0 {
		return nil, common.NewAppError("NO_INPUT_ROOTS", "no valid input roots found", common.ErrNotFound)
	}
	return out, nil
}

// Collector walks text roots and gathers mentions.
type Collector struct {
	logger *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

// Collect scans every .txt under each root. Unreadable files contribute
// nothing; the batch never aborts on a single bad file.
func (c *Collector) Collect(roots []string) ([]Mention, error) {
	var out []Mention
	for _, root := range roots {
		files, err := corpus.ListFiles(root, constants.ExtText)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", root, err)
		}
		for _, path := range files {
			lines := loadLines(path)
			if len(lines) == 0 {
				continue
			}
			found := Extract(lines, path)
			if len(found) > 0 {
				c.logger.Debug("mentions.file", "path", path, "count", len(found))
			}
			out = append(out, found...)
		}
	}
	return out, nil
}

func loadLines(path string) []string {
	body := corpus.LoadBody(path)
	if strings.TrimSpace(body) == "" {
		return nil
	}
	return strings.Split(body, "\n")
}

// Summary is the run-level rollup written next to the extracted mentions.
type Summary struct {
	InputRoots   []string `json:"input_roots"`
	MentionCount int      `json:"mention_count"`
}

// WriteOutputs writes the JSONL records, the plain-text payload pack, and the
// run summary under outDir.
func WriteOutputs(outDir string, roots []string, ms []Mention) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", outDir, err)
	}

	records := make([]Record, len(ms))
	for i, m := range ms {
		records[i] = BuildRecord(m)
	}

	jf, err := os.Create(filepath.Join(outDir, "case_mentions.jsonl"))
	if err != nil {
		return fmt.Errorf("create jsonl: %w", err)
	}
	enc := json.NewEncoder(jf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			_ = jf.Close()
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if err := jf.Close(); err != nil {
		return fmt.Errorf("close jsonl: %w", err)
	}

	var b strings.Builder
	sep := "\n\n" + strings.Repeat("-", 80) + "\n\n"
	for _, rec := range records {
		b.WriteString(rec.Text)
		b.WriteString(sep)
	}
	if err := os.WriteFile(filepath.Join(outDir, "case_mentions.txt"), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write payloads: %w", err)
	}

	summary, err := json.MarshalIndent(Summary{InputRoots: roots, MentionCount: len(records)}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "case_mentions_summary.json"), summary, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
