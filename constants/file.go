package constants

import "strings"

// Corpus names used across reports. Stable values (they appear in CSV output).
const (
	CorpusCase     = "case"
	CorpusResearch = "research"
)

// File extensions the pipeline consumes, lowercased without the dot.
const (
	ExtPDF  = "pdf"
	ExtText = "txt"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
