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


package core

import "fmt"

// ValidateKnowledgeFile validates a KnowledgeFile according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Path must not be empty
//   - Status must be a known EmbeddingStatus
//
// NOT validated (populated by the pipeline):
//   - ChunkCount and VectorIDs (empty until processing completes)
//   - Error (empty unless the file failed)
//   - ID (0 is valid from database sequences)
func ValidateKnowledgeFile(file *KnowledgeFile) error {
	if file == nil {
		return fmt.Errorf("%w: file is nil", ErrInvalidKnowledgeFile)
	}

	if file.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeFile, ErrEmptyName)
	}

	if file.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeFile, ErrEmptyPath)
	}

	if err := ValidateStatus(file.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeFile, err)
	}

	return nil
}

// ValidateKnowledgeBase validates a KnowledgeBase according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - ChunkSize must be positive
//   - ChunkOverlap must not be negative
//
// ChunkOverlap >= ChunkSize is deliberately allowed: the chunker guards
// against the degenerate configuration at split time instead of rejecting
// the knowledge base outright.
func ValidateKnowledgeBase(kb *KnowledgeBase) error {
	if kb == nil {
		return fmt.Errorf("%w: knowledge base is nil", ErrInvalidKnowledgeBase)
	}

	if kb.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeBase, ErrEmptyName)
	}

	if kb.ChunkSize <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeBase, ErrInvalidChunkSize)
	}

	if kb.ChunkOverlap < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgeBase, ErrNegativeChunkOverlap)
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Index must not be negative
//
// NOT validated:
//   - Vector (empty until the indexer embeds the chunk)
//   - Id (assigned by the vector index)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: chunk index cannot be negative", ErrInvalidChunk)
	}

	return nil
}

// ValidateStatus checks that an EmbeddingStatus is one of the known values.
func ValidateStatus(status EmbeddingStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
}
