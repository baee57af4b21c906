package extract

import (
	"bytes"
	"strings"

	"code.sajari.com/docconv"
)

// Extractor turns raw file bytes into plain text.
// Implementations must be safe for concurrent use.
type Extractor interface {
	// Extract returns the extracted plain-text content for raw bytes of the
	// given lowercase extension (including the dot, e.g. ".pdf").
	// Returns *UnsupportedFormatError for unrecognized extensions and
	// *ExtractionError when the underlying conversion fails.
	Extract(data []byte, ext string) (string, error)
}

// extractFunc extracts text from raw bytes of one specific format.
type extractFunc func(data []byte) (string, error)

// DocExtractor implements Extractor with a closed dispatch table keyed by
// file extension.
type DocExtractor struct {
	formats map[string]extractFunc
}

var _ Extractor = (*DocExtractor)(nil)

// NewDocExtractor creates an extractor handling .pdf, .docx, .txt and .md.
func NewDocExtractor() *DocExtractor {
	return &DocExtractor{
		formats: map[string]extractFunc{
			".pdf":  extractPDF,
			".docx": extractDOCX,
			".txt":  extractPlain,
			".md":   extractPlain,
		},
	}
}

// Supports reports whether the extension is in the recognized set.
func (e *DocExtractor) Supports(ext string) bool {
	_, ok := e.formats[strings.ToLower(ext)]
	return ok
}

// Extract dispatches to the format-specific extraction function.
func (e *DocExtractor) Extract(data []byte, ext string) (string, error) {
	fn, ok := e.formats[strings.ToLower(ext)]
	if !ok {
		return "", &UnsupportedFormatError{Ext: ext}
	}
	return fn(data)
}

// extractPDF converts PDF bytes to text. Page texts come back already
// joined by the converter.
func extractPDF(data []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	return res.Body, nil
}

// extractDOCX converts DOCX bytes to text.
func extractDOCX(data []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data),
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", false)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	return res.Body, nil
}
