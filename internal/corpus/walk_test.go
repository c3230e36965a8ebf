package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcwhitaker/caseindex/internal/common"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFilesSortedCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Zeta Motion.PDF"))
	touch(t, filepath.Join(root, "alpha order.pdf"))
	touch(t, filepath.Join(root, "nested", "Beta response.pdf"))
	touch(t, filepath.Join(root, "notes.txt"))

	files, err := ListFiles(root, "pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want 3: %v", len(files), files)
	}
	wantOrder := []string{"alpha order.pdf", "Beta response.pdf", "Zeta Motion.PDF"}
	for i, want := range wantOrder {
		if filepath.Base(files[i]) != want {
			t.Errorf("position %d = %s, want %s", i, filepath.Base(files[i]), want)
		}
	}
}

func TestListFilesMissingRoot(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"), "pdf")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("missing root err = %v, want ErrNotFound", err)
	}
}

func TestPatternFilters(t *testing.T) {
	patterns, err := CompilePatterns([]string{`draft`, `exhibit \d+`})
	if err != nil {
		t.Fatal(err)
	}
	if !MatchAny(patterns, "docs/DRAFT motion.pdf") {
		t.Error("case-insensitive match failed")
	}
	if !MatchAny(patterns, "Exhibit 12.pdf") {
		t.Error("regex match failed")
	}
	if MatchAny(patterns, "final order.pdf") {
		t.Error("unexpected match")
	}

	if _, err := CompilePatterns([]string{`(`}); err == nil {
		t.Error("invalid pattern did not error")
	}
}

func TestWindow(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	tests := []struct {
		name       string
		start, max int
		want       []string
	}{
		{"all", 1, 0, []string{"a", "b", "c", "d"}},
		{"from third", 3, 0, []string{"c", "d"}},
		{"capped", 2, 2, []string{"b", "c"}},
		{"start past end", 5, 0, nil},
		{"zero start treated as first", 0, 1, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Window(files, tt.start, tt.max)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFilterInclude(t *testing.T) {
	files := []string{"a/mandamus.pdf", "a/notice.pdf"}
	patterns, _ := CompilePatterns([]string{"mandamus"})
	got := FilterInclude(files, patterns)
	if len(got) != 1 || got[0] != "a/mandamus.pdf" {
		t.Errorf("got %v", got)
	}
	if got := FilterInclude(files, nil); len(got) != 2 {
		t.Errorf("empty patterns filtered: %v", got)
	}
}

func TestStripHeaders(t *testing.T) {
	content := strings.Join([]string{
		"FILE: example.pdf",
		"PAGES: 2",
		"OCR_MODE: always",
		"DPI: 300",
		"================================================================================",
		"=== PAGE 1 ===",
		"--- EXTRACTED TEXT ---",
		"Smith v. Jones",
		"--- OCR TEXT ---",
		"123 S.W.3d 456",
	}, "\n")

	cleaned := StripHeaders(content)
	for _, banned := range []string{"FILE:", "PAGES:", "OCR_MODE:", "DPI:", "==="} {
		if strings.Contains(cleaned, banned) {
			t.Errorf("header %q survived strip", banned)
		}
	}
	if !strings.Contains(cleaned, "Smith v. Jones") || !strings.Contains(cleaned, "123 S.W.3d 456") {
		t.Errorf("body text lost: %q", cleaned)
	}
}

func TestLoadBodyUnreadableFile(t *testing.T) {
	if body := LoadBody(filepath.Join(t.TempDir(), "missing.txt")); body != "" {
		t.Errorf("missing file body = %q, want empty", body)
	}
}
