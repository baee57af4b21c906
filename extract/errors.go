package extract

import "fmt"

// UnsupportedFormatError indicates a file extension outside the recognized
// set. It is never retried; the message is stored verbatim on the file.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Ext)
}

// ExtractionError indicates the underlying conversion library failed
// (corrupt file, missing codec, missing external dependency). The original
// error text is carried verbatim for the file's error field.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
