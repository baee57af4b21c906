package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
)

func TestKnowledgeFileBasics(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		chunkRepo.Close()
		kbRepo.Close()
		fileRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	file := &core.KnowledgeFile{
		KnowledgeBaseId: 1,
		Name:            "handbook.pdf",
		Path:            "kb/1/handbook.pdf",
		Size:            2048,
		FileType:        ".pdf",
		Status:          core.StatusPending,
	}

	added, err := fileRepo.AddFiles(ctx, file)
	if err != nil {
		t.Fatalf("Failed to add knowledge file: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(added))
	}

	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := fileRepo.GetFile(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get knowledge file: %v", err)
	}

	if retrieved.Name != "handbook.pdf" {
		t.Fatalf("Expected 'handbook.pdf', got '%s'", retrieved.Name)
	}
	if retrieved.Status != core.StatusPending {
		t.Fatalf("Expected pending status, got %s", retrieved.Status)
	}
}

func TestKnowledgeFileUpdate(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := fileRepo.AddFiles(ctx, &core.KnowledgeFile{
		KnowledgeBaseId: 1,
		Name:            "notes.txt",
		Path:            "kb/1/notes.txt",
		Status:          core.StatusPending,
	})
	if err != nil {
		t.Fatalf("Failed to add knowledge file: %v", err)
	}

	file := added[0]
	file.Status = core.StatusCompleted
	file.ChunkCount = 3
	file.VectorIDs = []string{"v1", "v2", "v3"}

	if _, err := fileRepo.UpdateFiles(ctx, file); err != nil {
		t.Fatalf("Failed to update knowledge file: %v", err)
	}

	retrieved, err := fileRepo.GetFile(ctx, file.Id)
	if err != nil {
		t.Fatalf("Failed to get knowledge file: %v", err)
	}

	if retrieved.Status != core.StatusCompleted {
		t.Fatalf("Expected completed, got %s", retrieved.Status)
	}
	if retrieved.ChunkCount != 3 {
		t.Fatalf("Expected chunk count 3, got %d", retrieved.ChunkCount)
	}
	if len(retrieved.VectorIDs) != 3 || retrieved.VectorIDs[0] != "v1" {
		t.Fatalf("Unexpected vector IDs: %v", retrieved.VectorIDs)
	}
}

func TestKnowledgeFileUpdateNotFound(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	_, err = fileRepo.UpdateFiles(context.Background(), &core.KnowledgeFile{Id: 9999, Name: "ghost"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestListFilesByKnowledgeBase(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()

	files := []*core.KnowledgeFile{
		{KnowledgeBaseId: 1, Name: "a.txt", Path: "kb/1/a.txt", Size: 10, Status: core.StatusPending},
		{KnowledgeBaseId: 1, Name: "b.txt", Path: "kb/1/b.txt", Size: 20, Status: core.StatusPending},
		{KnowledgeBaseId: 2, Name: "c.txt", Path: "kb/2/c.txt", Size: 30, Status: core.StatusPending},
	}

	if _, err := fileRepo.AddFiles(ctx, files...); err != nil {
		t.Fatalf("Failed to add knowledge files: %v", err)
	}

	listed, err := fileRepo.ListFilesByKnowledgeBase(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}

	if len(listed) != 2 {
		t.Fatalf("Expected 2 files in kb 1, got %d", len(listed))
	}
	for _, f := range listed {
		if f.KnowledgeBaseId != 1 {
			t.Fatalf("File %s belongs to kb %d, expected 1", f.Name, f.KnowledgeBaseId)
		}
	}
}

func TestKnowledgeFileDelete(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := fileRepo.AddFiles(ctx, &core.KnowledgeFile{
		KnowledgeBaseId: 1,
		Name:            "temp.md",
		Path:            "kb/1/temp.md",
		Status:          core.StatusPending,
	})
	if err != nil {
		t.Fatalf("Failed to add knowledge file: %v", err)
	}

	if err := fileRepo.DeleteFiles(ctx, added[0].Id); err != nil {
		t.Fatalf("Failed to delete knowledge file: %v", err)
	}

	if _, err := fileRepo.GetFile(ctx, added[0].Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// Index entry must be gone too
	listed, err := fileRepo.ListFilesByKnowledgeBase(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list files: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("Expected empty listing after delete, got %d files", len(listed))
	}
}

func TestKnowledgeBaseBasics(t *testing.T) {
	fileRepo, kbRepo, chunkRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chunkRepo.Close(); kbRepo.Close(); fileRepo.Close(); backend.Close() }()

	ctx := context.Background()

	kb := &core.KnowledgeBase{
		Name:         "product-docs",
		Owner:        "ops",
		ChunkSize:    500,
		ChunkOverlap: 50,
	}

	added, err := kbRepo.AddKnowledgeBases(ctx, kb)
	if err != nil {
		t.Fatalf("Failed to add knowledge base: %v", err)
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := kbRepo.GetKnowledgeBase(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get knowledge base: %v", err)
	}
	if retrieved.Name != "product-docs" {
		t.Fatalf("Expected 'product-docs', got '%s'", retrieved.Name)
	}
	if retrieved.ChunkSize != 500 {
		t.Fatalf("Expected chunk size 500, got %d", retrieved.ChunkSize)
	}

	bases, err := kbRepo.ListKnowledgeBases(ctx)
	if err != nil {
		t.Fatalf("Failed to list knowledge bases: %v", err)
	}
	if len(bases) != 1 {
		t.Fatalf("Expected 1 knowledge base, got %d", len(bases))
	}
}
