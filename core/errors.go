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

import "errors"

// Domain validation errors
var (
	// ErrInvalidKnowledgeFile indicates a KnowledgeFile failed validation.
	ErrInvalidKnowledgeFile = errors.New("invalid knowledge file")

	// ErrInvalidKnowledgeBase indicates a KnowledgeBase failed validation.
	ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("storage path cannot be empty")

	// ErrInvalidStatus indicates an invalid EmbeddingStatus value.
	ErrInvalidStatus = errors.New("invalid embedding status")

	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrNegativeChunkOverlap indicates a negative chunk overlap.
	ErrNegativeChunkOverlap = errors.New("chunk overlap cannot be negative")

	// ErrEmptyContent indicates the chunk Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
