package corpus

import (
	"os"
	"strings"
)

// StripHeaders drops the extraction banner and page markers from an
// extracted text file, leaving only document text.
func StripHeaders(content string) string {
	lines := strings.Split(content, "\n")
	filtered := lines[:0]
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "FILE:"),
			strings.HasPrefix(line, "PAGES:"),
			strings.HasPrefix(line, "OCR_MODE:"),
			strings.HasPrefix(line, "DPI:"),
			strings.HasPrefix(line, "==="),
			strings.HasPrefix(line, "--- EXTRACTED TEXT ---"),
			strings.HasPrefix(line, "--- OCR TEXT ---"):
			continue
		}
		filtered = append(filtered, line)
	}
	return strings.Join(filtered, "\n")
}

// LoadBody reads an extracted text file and strips the banner. Unreadable
// files yield an empty body, never an error: a bad file contributes zero
// hits and the batch moves on.
func LoadBody(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return StripHeaders(string(data))
}
