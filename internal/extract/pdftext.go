package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/rcwhitaker/caseindex/internal/common"
)

// pageTexts reads the embedded text layer, one string per page. Pages whose
// text cannot be decoded come back empty rather than failing the document.
// The pdf package panics on some malformed xref tables, so recover and turn
// that into an error.
func pageTexts(path string) (texts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts = nil
			err = common.NewAppError("PDF_PARSE", fmt.Sprintf("parse pdf %s: %v", path, r), common.ErrInternal)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	texts = make([]string, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		texts[i-1] = text
	}
	return texts, nil
}
