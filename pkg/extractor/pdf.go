package extractor

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts per-page plain text from the PDF at path. Pages
// yielding no text are skipped; page numbers are 1-based and preserved.
// An unreadable file is fatal and returned as an ExtractionError —
// structural correctness beyond best-effort text extraction is not
// checked.
func ExtractText(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("opening pdf: %w", err)}
	}
	defer f.Close()

	var pages []Page
	for num := 1; num <= reader.NumPage(); num++ {
		p := reader.Page(num)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, &ExtractionError{Path: path, Err: fmt.Errorf("extracting text from page %d: %w", num, err)}
		}
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: num, Text: text})
	}
	return pages, nil
}
