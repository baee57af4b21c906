package storage

import (
	"context"

	"github.com/poiesic/corpit/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// FileRepository provides operations for managing knowledge file records.
// It persists pipeline state; the ingestion pipeline treats it as the
// durable source of truth for embedding status.
type FileRepository interface {
	Repository

	// AddFiles adds one or more knowledge files to storage.
	// For files with ID=0, generates new IDs from sequence.
	// Sets InsertedAt/UpdatedAt timestamps.
	// Returns the files with generated IDs and timestamps populated.
	AddFiles(ctx context.Context, files ...*core.KnowledgeFile) ([]*core.KnowledgeFile, error)

	// UpdateFiles updates existing knowledge files.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any file doesn't exist.
	UpdateFiles(ctx context.Context, files ...*core.KnowledgeFile) ([]*core.KnowledgeFile, error)

	// DeleteFiles removes knowledge files by their IDs.
	// Also removes associated knowledge-base index entries.
	// Returns ErrNotFound if any file doesn't exist.
	DeleteFiles(ctx context.Context, ids ...core.ID) error

	// GetFile retrieves a single knowledge file by ID.
	// Returns ErrNotFound if the file doesn't exist.
	GetFile(ctx context.Context, id core.ID) (*core.KnowledgeFile, error)

	// GetFiles retrieves multiple knowledge files by their IDs.
	// Returns only the files that exist (no error for missing files).
	GetFiles(ctx context.Context, ids ...core.ID) ([]*core.KnowledgeFile, error)

	// ListFilesByKnowledgeBase retrieves all files owned by a knowledge base,
	// ordered by ID.
	ListFilesByKnowledgeBase(ctx context.Context, kbID core.ID) ([]*core.KnowledgeFile, error)
}

// KnowledgeBaseRepository provides operations for managing knowledge bases.
type KnowledgeBaseRepository interface {
	Repository

	// AddKnowledgeBases adds one or more knowledge bases to storage.
	// For bases with ID=0, generates new IDs from sequence.
	// Sets InsertedAt/UpdatedAt timestamps.
	AddKnowledgeBases(ctx context.Context, bases ...*core.KnowledgeBase) ([]*core.KnowledgeBase, error)

	// UpdateKnowledgeBases updates existing knowledge bases.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any base doesn't exist.
	UpdateKnowledgeBases(ctx context.Context, bases ...*core.KnowledgeBase) ([]*core.KnowledgeBase, error)

	// DeleteKnowledgeBases removes knowledge bases by their IDs.
	// Returns ErrNotFound if any base doesn't exist.
	// Contained files are owned by the base and must be deleted by the
	// caller (cascade is coordinated at the pipeline layer, which also
	// cleans up the vector index).
	DeleteKnowledgeBases(ctx context.Context, ids ...core.ID) error

	// GetKnowledgeBase retrieves a single knowledge base by ID.
	// Returns ErrNotFound if the base doesn't exist.
	GetKnowledgeBase(ctx context.Context, id core.ID) (*core.KnowledgeBase, error)

	// ListKnowledgeBases retrieves all knowledge bases, ordered by ID.
	ListKnowledgeBases(ctx context.Context) ([]*core.KnowledgeBase, error)
}

// ChunkRepository provides operations for managing indexed chunks and their
// vectors. It backs the vector index.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// Chunk IDs are assigned by the caller (opaque vector identifiers).
	// Sets InsertedAt timestamps.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunksByFile removes every chunk belonging to a file.
	// Returns the number of chunks removed. Missing files are not an error.
	DeleteChunksByFile(ctx context.Context, fileID core.ID) (int, error)

	// GetChunk retrieves a single chunk by its opaque ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id string) (*core.Chunk, error)

	// ListChunksByFile retrieves all chunks belonging to a file,
	// ordered by chunk index.
	ListChunksByFile(ctx context.Context, fileID core.ID) ([]*core.Chunk, error)

	// ListChunks retrieves all chunks in storage. Intended for bulk
	// maintenance operations such as reindexing.
	ListChunks(ctx context.Context) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks (typically their vectors).
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// CountByKnowledgeBase returns the number of chunks indexed for a
	// knowledge base.
	CountByKnowledgeBase(ctx context.Context, kbID core.ID) (int64, error)

	// FindSimilar finds chunks similar to the given vector.
	// Returns chunks with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ChunkMatch, error)
}
