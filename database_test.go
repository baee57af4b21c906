package corpit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpit/ai/mock"
	"github.com/poiesic/corpit/core"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		dataPath := filepath.Join(t.TempDir(), "corpit_data")
		db, err := NewDatabase(dataPath, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.FileRepository())
		assert.NotNil(t, db.KnowledgeBaseRepository())
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.BlobStore())
		assert.NotNil(t, db.Provider())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "corpit_data")

	// Pin the embedding so query and content land on the same vector and
	// the similarity floor can't interfere.
	provider := mock.NewMockProvider()
	provider.(*mock.MockProvider).GetMockEmbedder().EmbedTextFunc =
		func(ctx context.Context, text string) ([]float32, error) {
			return []float32{0.3, 0.4, 0.5}, nil
		}

	db, err := NewDatabase(dataPath, WithProvider(provider))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	monitor, err := db.NewMonitor()
	require.NoError(t, err)

	pipeline, err := db.NewIngestionPipeline(monitor)
	require.NoError(t, err)
	defer pipeline.Release()

	// Create a knowledge base and ingest a document.
	added, err := db.KnowledgeBaseRepository().AddKnowledgeBases(ctx, &core.KnowledgeBase{
		Name:         "handbook",
		Owner:        "tester",
		ChunkSize:    80,
		ChunkOverlap: 10,
	})
	require.NoError(t, err)
	kb := added[0]

	content := []byte("The handbook describes the badger storage engine. " +
		"It also covers how chunks are vectorized and searched afterwards.")
	file, err := pipeline.Ingest(ctx, kb.Id, "handbook.txt", content)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, err := db.FileRepository().GetFile(ctx, file.Id)
		return err == nil && current.Status == core.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	// Search finds the ingested content.
	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	results, err := searcher.FindSimilarInKnowledgeBase(ctx, "badger storage engine", kb.Id, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, file.Id, results[0].Chunk.FileId)
}

func TestDatabase_Close(t *testing.T) {
	dataPath := filepath.Join(t.TempDir(), "corpit_data")
	db, err := NewDatabase(dataPath, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	require.NoError(t, db.Close())
}
