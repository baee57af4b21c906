// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/corpit/ai"
	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
)

// Store indexes chunk content for similarity search and removes it when the
// owning file goes away. Each successfully indexed chunk gets an opaque
// vector identifier that the caller records on the file.
type Store interface {
	// AddChunk embeds the chunk's content, assigns it an opaque ID and
	// persists it. Returns the assigned ID.
	AddChunk(ctx context.Context, chunk *core.Chunk) (string, error)

	// DeleteFile removes every indexed chunk belonging to a file.
	// Returns the number of chunks removed. Missing files are not an error.
	DeleteFile(ctx context.Context, fileID core.ID) (int, error)
}

// Indexer implements Store on top of an embedder and a chunk repository.
// Vectors are normalized to unit length before persistence so similarity
// reduces to a dot product.
type Indexer struct {
	embedder ai.Embedder
	chunks   storage.ChunkRepository
	logger   *slog.Logger
}

var _ Store = (*Indexer)(nil)

// NewIndexer creates an Indexer backed by the given embedder and repository.
func NewIndexer(embedder ai.Embedder, chunks storage.ChunkRepository) (*Indexer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is nil", ErrInvalidConfig)
	}
	if chunks == nil {
		return nil, fmt.Errorf("%w: chunk repository is nil", ErrInvalidConfig)
	}
	return &Indexer{
		embedder: embedder,
		chunks:   chunks,
		logger:   slog.Default().With("component", "vector-indexer"),
	}, nil
}

// AddChunk embeds and persists a single chunk.
// The chunk's Id and Vector fields are overwritten.
func (ix *Indexer) AddChunk(ctx context.Context, chunk *core.Chunk) (string, error) {
	if chunk == nil {
		return "", core.ErrInvalidChunk
	}
	if strings.TrimSpace(chunk.Content) == "" {
		return "", core.ErrEmptyContent
	}

	embedding, err := ix.embedder.EmbedText(ctx, chunk.Content)
	if err != nil {
		ix.logger.Error("embedding failed",
			"fileId", chunk.FileId,
			"index", chunk.Index,
			"err", err)
		return "", fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(embedding) == 0 {
		return "", fmt.Errorf("%w: embedder returned empty vector", ErrEmbeddingFailed)
	}

	chunk.Id = uuid.NewString()
	chunk.Vector = Normalize(embedding)

	if _, err := ix.chunks.AddChunks(ctx, chunk); err != nil {
		return "", fmt.Errorf("persisting chunk: %w", err)
	}

	ix.logger.Debug("indexed chunk",
		"id", chunk.Id,
		"fileId", chunk.FileId,
		"index", chunk.Index,
		"dims", len(chunk.Vector))

	return chunk.Id, nil
}

// DeleteFile removes all indexed chunks for a file.
func (ix *Indexer) DeleteFile(ctx context.Context, fileID core.ID) (int, error) {
	removed, err := ix.chunks.DeleteChunksByFile(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks for file %d: %w", fileID, err)
	}
	if removed > 0 {
		ix.logger.Debug("removed indexed chunks", "fileId", fileID, "count", removed)
	}
	return removed, nil
}
