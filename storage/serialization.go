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


package storage

import (
	"github.com/poiesic/corpit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalKnowledgeFile serializes a KnowledgeFile to bytes.
func MarshalKnowledgeFile(file *core.KnowledgeFile) []byte {
	buf := make([]byte, core.KnowledgeFileMUS.Size(*file))
	core.KnowledgeFileMUS.Marshal(*file, buf)
	return buf
}

// UnmarshalKnowledgeFile deserializes a KnowledgeFile from bytes.
func UnmarshalKnowledgeFile(data []byte) (*core.KnowledgeFile, error) {
	file, _, err := core.KnowledgeFileMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// MarshalKnowledgeBase serializes a KnowledgeBase to bytes.
func MarshalKnowledgeBase(kb *core.KnowledgeBase) []byte {
	buf := make([]byte, core.KnowledgeBaseMUS.Size(*kb))
	core.KnowledgeBaseMUS.Marshal(*kb, buf)
	return buf
}

// UnmarshalKnowledgeBase deserializes a KnowledgeBase from bytes.
func UnmarshalKnowledgeBase(data []byte) (*core.KnowledgeBase, error) {
	kb, _, err := core.KnowledgeBaseMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &kb, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &chunk, nil
}
