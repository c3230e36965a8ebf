package dates

import (
	"testing"
	"time"
)

func TestFromName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		undated bool
	}{
		{
			name: "dotted two digit year",
			in:   "04.08.24 - Mandamus Filed-1.pdf",
			want: "2024-04-08",
		},
		{
			name: "dotted four digit year",
			in:   "12.31.2023 Order.pdf",
			want: "2023-12-31",
		},
		{
			name: "iso style",
			in:   "2022-06-01 notice of hearing.txt",
			want: "2022-06-01",
		},
		{
			name: "underscore separators",
			in:   "7_4_21_response.pdf",
			want: "2021-07-04",
		},
		{
			name:    "no date pattern",
			in:      "TRIAL BY AMBUSH.pdf",
			undated: true,
		},
		{
			name:    "year out of bounds",
			in:      "01.01.1889 ledger.pdf",
			undated: true,
		},
		{
			name:    "impossible calendar date",
			in:      "13.45.24 misc.pdf",
			undated: true,
		},
		{
			name: "earliest match wins",
			in:   "03.15.22 amended 04.01.23 exhibit.pdf",
			want: "2022-03-15",
		},
		{
			name: "invalid candidate falls through to later valid one",
			in:   "99.99.99 then 05.06.20.pdf",
			want: "2020-05-06",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromName(tt.in, DefaultBounds)
			if tt.undated {
				if ok {
					t.Fatalf("FromName(%q) = %v, want undated", tt.in, got)
				}
				return
			}
			if !ok {
				t.Fatalf("FromName(%q) undated, want %s", tt.in, tt.want)
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("FromName(%q) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestFromNameCustomBounds(t *testing.T) {
	// A 2035 filing is plausible under the defaults but not under a
	// tightened upper bound.
	in := "01.02.35 projection.pdf"
	if _, ok := FromName(in, DefaultBounds); !ok {
		t.Fatalf("FromName(%q) undated under default bounds", in)
	}
	if _, ok := FromName(in, Bounds{MinYear: 1990, MaxYear: 2030}); ok {
		t.Errorf("FromName(%q) parsed under MaxYear 2030, want undated", in)
	}
}

func TestMonth(t *testing.T) {
	d := time.Date(2024, time.April, 8, 0, 0, 0, 0, time.UTC)
	if got := Month(d); got != "2024-04" {
		t.Errorf("Month = %q, want 2024-04", got)
	}
}
