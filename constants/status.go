package constants

// ExtractionStatus is the canonical per-file outcome for an extraction run.
type ExtractionStatus string

// Stable values (these exact strings go into the extraction log and run store).
const (
	StatusOK      ExtractionStatus = "ok"      // text extracted for every page
	StatusPartial ExtractionStatus = "partial" // some pages failed OCR
	StatusError   ExtractionStatus = "error"   // the file could not be processed
	StatusSkipped ExtractionStatus = "skipped" // resume or skip-pattern skip
)
