package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EmbeddingStatus is the lifecycle stage of a file's extraction-and-indexing
// pipeline. Transitions only move forward through
// Pending → Processing → (Completed | Failed); a reprocess request resets a
// terminal status back to Pending before the pipeline runs again.
type EmbeddingStatus int

const (
	// StatusPending means the file is stored but not yet processed.
	StatusPending EmbeddingStatus = iota + 1
	// StatusProcessing means the pipeline is currently running for the file.
	StatusProcessing
	// StatusCompleted means the file was chunked and indexed successfully.
	StatusCompleted
	// StatusFailed means a pipeline step failed; the Error field explains why.
	StatusFailed
)

// String returns the lowercase status name used in logs and CLI output.
func (s EmbeddingStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is a pipeline end state.
func (s EmbeddingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// KnowledgeFile represents one uploaded source document.
// It is created on upload and mutated by the ingestion pipeline as
// processing advances.
type KnowledgeFile struct {
	Id              ID
	KnowledgeBaseId ID
	Name            string // Display name, usually the original filename
	Path            string // Relative path within the blob store
	Size            int64  // Raw size in bytes
	ContentHash     ID     // IDFromContent of the raw bytes; used for duplicate detection
	FileType        string // Lowercase extension including the dot, e.g. ".pdf"
	Status          EmbeddingStatus
	Error           string   // Failure message; empty unless Status is failed
	ChunkCount      int      // Number of chunks produced by the last run
	VectorIDs       []string // Opaque vector identifiers, in chunk order
	InsertedAt      time.Time
	UpdatedAt       time.Time
}

// KnowledgeBase is a named container of knowledge files owned by one user.
// Its aggregate counters are recomputed from the contained files whenever a
// file's status changes, never incrementally maintained.
type KnowledgeBase struct {
	Id            ID
	Name          string
	Description   string
	Owner         string
	Public        bool
	KnowledgeType string // Free-form tag, e.g. "documentation", "support"
	ChunkSize     int    // Target chunk size in characters
	ChunkOverlap  int    // Overlap between consecutive chunks in characters
	FileCount     int64
	TotalSize     int64
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// Chunk is a bounded-length substring of a document's extracted text, the
// unit handed to the vector index. Id is the opaque vector identifier
// reported back on the owning KnowledgeFile.
type Chunk struct {
	Id              string
	FileId          ID
	KnowledgeBaseId ID
	Index           int // Zero-based position within the source document
	Content         string
	FileName        string
	FileType        string
	Vector          []float32
	InsertedAt      time.Time
}

// ChunkMatch represents a chunk match from vector similarity search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}
