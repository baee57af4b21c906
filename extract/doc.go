// Package extract converts uploaded document bytes into plain text.
//
// DocExtractor dispatches on file extension through a closed table:
// PDF and DOCX go through the docconv converter, TXT and MD go through an
// ordered encoding-detection chain (UTF-8, GBK, GB18030, Latin-1) with a
// lossy UTF-8 fallback. Unrecognized extensions fail with
// UnsupportedFormatError; converter failures surface as ExtractionError
// with the original error text preserved for the file's error field.
package extract
