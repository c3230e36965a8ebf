// Package dates parses best-effort filing dates out of document filenames.
package dates

import (
	"regexp"
	"strconv"
	"time"
)

// Filenames in the corpus carry dates as either "04.08.24 - ..." or
// "2024-04-08 ..." with ., /, _ or - separators.
var patterns = []struct {
	re                      *regexp.Regexp
	yearIdx, monIdx, dayIdx int
}{
	{regexp.MustCompile(`(\d{1,2})[./_-](\d{1,2})[./_-](\d{2,4})`), 3, 1, 2},
	{regexp.MustCompile(`(\d{4})[./_-](\d{1,2})[./_-](\d{1,2})`), 1, 2, 3},
}

// Bounds restricts the years accepted when parsing filename dates.
type Bounds struct {
	MinYear int
	MaxYear int
}

// DefaultBounds matches the corpus: anything outside is OCR noise, not a
// filing date.
var DefaultBounds = Bounds{MinYear: 1990, MaxYear: 2100}

// FromName parses a calendar date from a file name or relative path.
// When the name holds several date-like fragments, the one appearing
// earliest in the name wins. Returns ok=false for undated names.
func FromName(name string, bounds Bounds) (time.Time, bool) {
	bestPos := -1
	var best time.Time
	for _, p := range patterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(name, -1) {
			year := normalizeYear(atoi(name[idx[2*p.yearIdx]:idx[2*p.yearIdx+1]]))
			month := atoi(name[idx[2*p.monIdx]:idx[2*p.monIdx+1]])
			day := atoi(name[idx[2*p.dayIdx]:idx[2*p.dayIdx+1]])
			if year < bounds.MinYear || year > bounds.MaxYear {
				continue
			}
			d, ok := calendarDate(year, month, day)
			if !ok {
				continue
			}
			if bestPos == -1 || idx[0] < bestPos {
				bestPos = idx[0]
				best = d
			}
		}
	}
	if bestPos == -1 {
		return time.Time{}, false
	}
	return best, true
}

// Month formats a parsed date as its YYYY-MM timeline bucket.
func Month(d time.Time) string {
	return d.Format("2006-01")
}

func normalizeYear(year int) int {
	if year < 100 {
		return 2000 + year
	}
	return year
}

// calendarDate rejects impossible dates like 24/13/2020: time.Date would
// silently normalize them instead.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
