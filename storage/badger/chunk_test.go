package badger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
)

func addTestChunks(t *testing.T, repo storage.ChunkRepository, fileID core.ID, n int) []*core.Chunk {
	t.Helper()

	chunks := make([]*core.Chunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = &core.Chunk{
			Id:              fmt.Sprintf("chunk-%d-%d", fileID, i),
			FileId:          fileID,
			KnowledgeBaseId: 1,
			Index:           i,
			Content:         fmt.Sprintf("content %d", i),
			FileName:        "doc.txt",
			FileType:        ".txt",
			Vector:          []float32{float32(i), 1, 0},
		}
	}

	if _, err := repo.AddChunks(context.Background(), chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}
	return chunks
}

func TestChunkBasics(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()
	addTestChunks(t, chunkRepo, 7, 3)

	chunk, err := chunkRepo.GetChunk(ctx, "chunk-7-1")
	if err != nil {
		t.Fatalf("Failed to get chunk: %v", err)
	}
	if chunk.Index != 1 {
		t.Fatalf("Expected index 1, got %d", chunk.Index)
	}
	if chunk.Content != "content 1" {
		t.Fatalf("Unexpected content: %q", chunk.Content)
	}
}

func TestListChunksByFile_Order(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()
	addTestChunks(t, chunkRepo, 7, 5)
	addTestChunks(t, chunkRepo, 8, 2)

	chunks, err := chunkRepo.ListChunksByFile(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to list chunks: %v", err)
	}
	if len(chunks) != 5 {
		t.Fatalf("Expected 5 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("Chunk %d has index %d, expected %d", i, c.Index, i)
		}
	}
}

func TestDeleteChunksByFile(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()
	addTestChunks(t, chunkRepo, 7, 4)
	addTestChunks(t, chunkRepo, 8, 2)

	deleted, err := chunkRepo.DeleteChunksByFile(ctx, 7)
	if err != nil {
		t.Fatalf("Failed to delete chunks: %v", err)
	}
	if deleted != 4 {
		t.Fatalf("Expected 4 deleted, got %d", deleted)
	}

	if _, err := chunkRepo.GetChunk(ctx, "chunk-7-0"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// Other file's chunks are untouched
	remaining, err := chunkRepo.ListChunksByFile(ctx, 8)
	if err != nil {
		t.Fatalf("Failed to list chunks: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("Expected 2 remaining chunks, got %d", len(remaining))
	}

	// Deleting again is not an error
	deleted, err = chunkRepo.DeleteChunksByFile(ctx, 7)
	if err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("Expected 0 deleted on second pass, got %d", deleted)
	}
}

func TestChunkFindSimilar(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()

	chunks := []*core.Chunk{
		{Id: "a", FileId: 1, KnowledgeBaseId: 1, Index: 0, Content: "aligned", Vector: []float32{1, 0, 0}},
		{Id: "b", FileId: 1, KnowledgeBaseId: 1, Index: 1, Content: "orthogonal", Vector: []float32{0, 1, 0}},
		{Id: "c", FileId: 1, KnowledgeBaseId: 1, Index: 2, Content: "close", Vector: []float32{0.9, 0.1, 0}},
		{Id: "d", FileId: 1, KnowledgeBaseId: 1, Index: 3, Content: "unembedded"},
	}
	if _, err := chunkRepo.AddChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	matches, err := chunkRepo.FindSimilar(ctx, []float32{1, 0, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].Chunk.Id != "a" {
		t.Fatalf("Expected best match 'a', got %q", matches[0].Chunk.Id)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatal("Matches not sorted by descending score")
	}
}
