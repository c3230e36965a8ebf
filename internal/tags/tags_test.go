package tags

import (
	"errors"
	"strings"
	"testing"

	"github.com/rcwhitaker/caseindex/internal/common"
)

func TestCountHitsCaseInsensitive(t *testing.T) {
	d := Builtin()
	body := "The petition for Mandamus was denied. Mandamus relief requires... MANDAMUS"
	hits := d.CountHits(body)
	if hits["mandamus"] != 3 {
		t.Errorf("mandamus hits = %d, want 3", hits["mandamus"])
	}
}

func TestCountHitsEmptyBody(t *testing.T) {
	d := Builtin()
	if hits := d.CountHits(""); len(hits) != 0 {
		t.Errorf("empty body produced hits: %v", hits)
	}
}

func TestCountHitsPatternsCountIndependently(t *testing.T) {
	d, err := New(map[string][]string{
		"mandamus": {`\bmandamus\b`, `writ of mandamus`},
	})
	if err != nil {
		t.Fatal(err)
	}
	// "writ of mandamus" hits both patterns: 2 for the word, 1 for the phrase.
	hits := d.CountHits("a writ of mandamus and another mandamus")
	if hits["mandamus"] != 3 {
		t.Errorf("hits = %d, want 3", hits["mandamus"])
	}
}

func TestCountHitsDeterministic(t *testing.T) {
	d := Builtin()
	body := strings.Repeat("due process hearing notice recusal mandamus ", 10)
	first := d.CountHits(body)
	for i := 0; i < 5; i++ {
		again := d.CountHits(body)
		if len(again) != len(first) {
			t.Fatalf("run %d: %d tags, want %d", i, len(again), len(first))
		}
		for tag, n := range first {
			if again[tag] != n {
				t.Fatalf("run %d: tag %s = %d, want %d", i, tag, again[tag], n)
			}
		}
	}
}

func TestBuiltinOrderStable(t *testing.T) {
	names := Builtin().Names()
	if len(names) != 24 {
		t.Fatalf("builtin has %d tags, want 24", len(names))
	}
	if names[0] != "due_process" || names[len(names)-1] != "lockout_eviction" {
		t.Errorf("unexpected order: first=%s last=%s", names[0], names[len(names)-1])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{
			name: "valid dictionary",
			in:   `{"tags": {"recusal": ["\\brecusal\\b", "disqualif"]}}`,
		},
		{
			name:    "missing tags key",
			in:      `{"issues": {}}`,
			wantErr: true,
		},
		{
			name:    "empty pattern list",
			in:      `{"tags": {"recusal": []}}`,
			wantErr: true,
		},
		{
			name:    "bad tag name",
			in:      `{"tags": {"Recusal!": ["x"]}}`,
			wantErr: true,
		},
		{
			name:    "invalid regex",
			in:      `{"tags": {"recusal": ["("]}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			in:      `tags: recusal`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.in))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Parse succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := d.CountHits("recusal and disqualification"); got["recusal"] != 2 {
				t.Errorf("loaded dictionary hits = %d, want 2", got["recusal"])
			}
		})
	}
}

func TestParseSchemaRejectionIsValidationError(t *testing.T) {
	_, err := Parse([]byte(`{"tags": {}}`))
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("schema rejection err = %v, want ErrValidation", err)
	}
}

func TestParseSortsNames(t *testing.T) {
	d, err := Parse([]byte(`{"tags": {"zeta": ["z"], "alpha": ["a"]}}`))
	if err != nil {
		t.Fatal(err)
	}
	names := d.Names()
	if names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("names = %v, want [alpha zeta]", names)
	}
}
