// Package ingestion provides pipeline orchestration for processing knowledge files.
//
// The Pipeline type manages the ingestion workflow for uploaded files:
//   - Persisting raw bytes to the blob store
//   - Extracting plain text by format
//   - Splitting text into overlapping chunks
//   - Vectorizing chunks in index order
//   - Advancing the persisted embedding status and refreshing
//     knowledge-base statistics
//
// Background processing runs on a worker pool; per-file claims prevent two
// concurrent runs against the same file. The Monitor type gives callers a
// polling view of in-flight progress without database round trips, and
// reconciles itself against persisted status on a background ticker.
package ingestion
