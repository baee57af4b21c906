package core

import (
	"errors"
	"testing"
)

func validFile() *KnowledgeFile {
	return &KnowledgeFile{
		Name:   "handbook.pdf",
		Path:   "kb/1/handbook.pdf",
		Status: StatusPending,
	}
}

func TestValidateKnowledgeFile(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*KnowledgeFile)
		wantErr error
	}{
		{
			name:    "valid file",
			mutate:  func(f *KnowledgeFile) {},
			wantErr: nil,
		},
		{
			name:    "empty name",
			mutate:  func(f *KnowledgeFile) { f.Name = "" },
			wantErr: ErrEmptyName,
		},
		{
			name:    "empty path",
			mutate:  func(f *KnowledgeFile) { f.Path = "" },
			wantErr: ErrEmptyPath,
		},
		{
			name:    "unknown status",
			mutate:  func(f *KnowledgeFile) { f.Status = EmbeddingStatus(42) },
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := validFile()
			tt.mutate(file)

			err := ValidateKnowledgeFile(file)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateKnowledgeFile() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKnowledgeFile() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidKnowledgeFile) {
				t.Errorf("ValidateKnowledgeFile() error should wrap ErrInvalidKnowledgeFile")
			}
		})
	}
}

func TestValidateKnowledgeFile_Nil(t *testing.T) {
	if err := ValidateKnowledgeFile(nil); !errors.Is(err, ErrInvalidKnowledgeFile) {
		t.Errorf("ValidateKnowledgeFile(nil) = %v, want ErrInvalidKnowledgeFile", err)
	}
}

func TestValidateKnowledgeBase(t *testing.T) {
	tests := []struct {
		name    string
		kb      KnowledgeBase
		wantErr error
	}{
		{
			name:    "valid",
			kb:      KnowledgeBase{Name: "docs", ChunkSize: 500, ChunkOverlap: 50},
			wantErr: nil,
		},
		{
			name:    "empty name",
			kb:      KnowledgeBase{ChunkSize: 500},
			wantErr: ErrEmptyName,
		},
		{
			name:    "zero chunk size",
			kb:      KnowledgeBase{Name: "docs", ChunkSize: 0},
			wantErr: ErrInvalidChunkSize,
		},
		{
			name:    "negative overlap",
			kb:      KnowledgeBase{Name: "docs", ChunkSize: 500, ChunkOverlap: -1},
			wantErr: ErrNegativeChunkOverlap,
		},
		{
			// The chunker guards against this at split time.
			name:    "overlap larger than chunk size is allowed",
			kb:      KnowledgeBase{Name: "docs", ChunkSize: 100, ChunkOverlap: 200},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKnowledgeBase(&tt.kb)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateKnowledgeBase() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKnowledgeBase() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   Chunk
		wantErr bool
	}{
		{name: "valid", chunk: Chunk{Content: "some text", Index: 0}},
		{name: "empty content", chunk: Chunk{Index: 0}, wantErr: true},
		{name: "negative index", chunk: Chunk{Content: "x", Index: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(&tt.chunk)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChunk() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
