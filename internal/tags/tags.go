// Package tags indexes document text against named keyword groups ("issues").
package tags

import (
	"fmt"
	"regexp"
	"sort"
)

// builtinIssues is the default dictionary for the litigation corpus. Patterns
// are matched case-insensitively; hits within a tag are counted independently
// per pattern with no dedup.
var builtinIssues = []struct {
	name     string
	patterns []string
}{
	{"due_process", []string{
		`\bdue process\b`,
		`opportunity to be heard`,
		`notice and hearing`,
		`without a hearing`,
	}},
	{"notice", []string{`\bnotice\b`, `\bnotified\b`, `\bnotification\b`}},
	{"hearing", []string{`\bhearing\b`, `show cause`, `trial setting`}},
	{"recusal", []string{
		`\brecusal\b`,
		`\brecuse\b`,
		`disqualif`,
		`regional presiding`,
		`order of assignment`,
	}},
	{"associate_judge", []string{`associate judge`, `order of referral`, `\bde novo\b`}},
	{"mandamus", []string{`\bmandamus\b`, `writ of mandamus`, `original proceeding`}},
	{"appeal", []string{`\bappeal\b`, `appellate`, `supreme court`, `court of appeals`}},
	{"jurisdiction", []string{
		`\bjurisdiction\b`,
		`\bvenue\b`,
		`\b1332\b`,
		`diversity`,
		`federal question`,
	}},
	{"removal_remand", []string{`\bremoval\b`, `\bremand\b`, `\b1441\b`, `\b1446\b`}},
	{"federal_court", []string{
		`\bfederal\b`,
		`u\.s\. district`,
		`district court`,
		`united states`,
	}},
	{"civil_rights_1983", []string{`\b1983\b`, `42 u\.s\.c\.`, `civil rights`}},
	{"rico", []string{`\brico\b`, `racketeering`, `enterprise`}},
	{"protective_order", []string{`protective order`, `family violence`}},
	{"temporary_orders", []string{`temporary order`, `temporary orders`, `temp order`}},
	{"custody", []string{
		`\bcustody\b`,
		`conservatorship`,
		`\bpossession\b`,
		`\baccess\b`,
		`parenting`,
	}},
	{"property_financial", []string{
		`\bproperty\b`,
		`\bassets\b`,
		`\bfunds\b`,
		`\bbank\b`,
		`\bfinancial\b`,
		`\bbusiness\b`,
		`\bresidence\b`,
		`\bhome\b`,
	}},
	{"fraud_perjury", []string{`\bfraud\b`, `\bperjury\b`, `misrepresent`, `forg`, `fabricat`}},
	{"discovery", []string{`\bdiscovery\b`, `interrogator`, `request for production`, `deposition`}},
	{"sanctions_contempt", []string{`\bsanction`, `\bcontempt\b`}},
	{"injunction", []string{`\binjunction\b`, `\binjunctive\b`, `\btro\b`}},
	{"child_support_oag", []string{`\boag\b`, `child support`, `arrears`}},
	{"law_enforcement", []string{`police`, `sheriff`, `law enforcement`, `warrant`}},
	{"ex_parte", []string{`ex parte`, `without notice`}},
	{"lockout_eviction", []string{`evict`, `lockout`, `\bvacate\b`, `removed from the home`}},
}

// Dictionary is a compiled tag-name -> patterns mapping with a stable
// iteration order (report rows follow it).
type Dictionary struct {
	names    []string
	patterns map[string][]*regexp.Regexp
}

// Builtin returns the default issue dictionary.
func Builtin() *Dictionary {
	d := &Dictionary{patterns: make(map[string][]*regexp.Regexp, len(builtinIssues))}
	for _, issue := range builtinIssues {
		compiled := make([]*regexp.Regexp, len(issue.patterns))
		for i, pat := range issue.patterns {
			compiled[i] = regexp.MustCompile(`(?i)` + pat)
		}
		d.names = append(d.names, issue.name)
		d.patterns[issue.name] = compiled
	}
	return d
}

// New compiles a dictionary from raw tag -> patterns pairs. Names are sorted
// so externally loaded dictionaries produce deterministic reports.
func New(raw map[string][]string) (*Dictionary, error) {
	d := &Dictionary{patterns: make(map[string][]*regexp.Regexp, len(raw))}
	for name := range raw {
		d.names = append(d.names, name)
	}
	sort.Strings(d.names)
	for _, name := range d.names {
		pats := raw[name]
		if len(pats) == 0 {
			return nil, fmt.Errorf("tag %q: no patterns", name)
		}
		compiled := make([]*regexp.Regexp, len(pats))
		for i, pat := range pats {
			re, err := regexp.Compile(`(?i)` + pat)
			if err != nil {
				return nil, fmt.Errorf("tag %q: pattern %q: %w", name, pat, err)
			}
			compiled[i] = re
		}
		d.patterns[name] = compiled
	}
	return d, nil
}

// Names returns tag names in report order.
func (d *Dictionary) Names() []string {
	return d.names
}

// CountHits tallies pattern matches per tag over body. Tags with zero hits
// are absent from the result. An empty body yields an empty map, not an error.
func (d *Dictionary) CountHits(body string) map[string]int {
	hits := make(map[string]int)
	if body == "" {
		return hits
	}
	for _, name := range d.names {
		count := 0
		for _, pat := range d.patterns[name] {
			count += len(pat.FindAllStringIndex(body, -1))
		}
		if count > 0 {
			hits[name] = count
		}
	}
	return hits
}
