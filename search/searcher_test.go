package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/corpit/ai/mock"
	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
	"github.com/poiesic/corpit/storage/badger"
	"github.com/poiesic/corpit/vector"
)

func newTestSearcher(t *testing.T, opts ...Option) (*Searcher, *mock.MockEmbedder, storage.ChunkRepository) {
	t.Helper()

	_, _, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	provider := mock.NewMockProvider()
	searcher, err := NewSearcher(chunkRepo, provider, opts...)
	require.NoError(t, err)

	embedder := provider.(*mock.MockProvider).GetMockEmbedder()
	return searcher, embedder, chunkRepo
}

// addChunk stores a chunk with an explicit unit vector so similarity scores
// in tests are exact.
func addChunk(t *testing.T, repo storage.ChunkRepository, id string, kbID core.ID, content string, vec []float32) {
	t.Helper()
	_, err := repo.AddChunks(context.Background(), &core.Chunk{
		Id:              id,
		FileId:          1,
		KnowledgeBaseId: kbID,
		Content:         content,
		Vector:          vector.Normalize(vec),
	})
	require.NoError(t, err)
}

func TestNewSearcher_Validation(t *testing.T) {
	_, _, chunkRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewSearcher(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewSearcher(chunkRepo, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestSearcher_FindSimilar_RanksByScore(t *testing.T) {
	searcher, embedder, repo := newTestSearcher(t)
	ctx := context.Background()

	// Query embeds to the x axis; chunk-a is a perfect match, chunk-b close,
	// chunk-c orthogonal (below the floor).
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	addChunk(t, repo, "chunk-a", 1, "alpha text", []float32{1, 0, 0})
	addChunk(t, repo, "chunk-b", 1, "beta text", []float32{0.9, 0.1, 0})
	addChunk(t, repo, "chunk-c", 1, "gamma text", []float32{0, 1, 0})

	results, err := searcher.FindSimilar(ctx, "query words", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "chunk-a", results[0].Chunk.Id)
	assert.Equal(t, "chunk-b", results[1].Chunk.Id)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearcher_FindSimilar_VerbatimBoost(t *testing.T) {
	searcher, embedder, repo := newTestSearcher(t)
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	// Identical similarity; only one contains the query words verbatim.
	addChunk(t, repo, "without", 1, "unrelated wording entirely", []float32{1, 0, 0})
	addChunk(t, repo, "with", 1, "the badger storage engine explained", []float32{1, 0, 0})

	results, err := searcher.FindSimilar(ctx, "badger storage", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "with", results[0].Chunk.Id)
	assert.InDelta(t, float64(results[1].Score)+verbatimBoost, float64(results[0].Score), 1e-6)
}

func TestSearcher_FindSimilar_RespectsMaxHits(t *testing.T) {
	searcher, embedder, repo := newTestSearcher(t)
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		addChunk(t, repo, id, 1, "content "+id, []float32{1, 0, 0})
	}

	results, err := searcher.FindSimilar(ctx, "query", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearcher_FindSimilar_InvalidMaxHits(t *testing.T) {
	searcher, _, _ := newTestSearcher(t)

	_, err := searcher.FindSimilar(context.Background(), "query", 0)
	assert.ErrorIs(t, err, ErrInvalidMaxHits)
}

func TestSearcher_FindSimilarInKnowledgeBase(t *testing.T) {
	searcher, embedder, repo := newTestSearcher(t)
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	addChunk(t, repo, "kb1-chunk", 1, "first base content", []float32{1, 0, 0})
	addChunk(t, repo, "kb2-chunk", 2, "second base content", []float32{1, 0, 0})

	results, err := searcher.FindSimilarInKnowledgeBase(ctx, "query", 2, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kb2-chunk", results[0].Chunk.Id)
}

func TestSearcher_FindSimilar_NoMatches(t *testing.T) {
	searcher, embedder, repo := newTestSearcher(t)
	ctx := context.Background()

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	addChunk(t, repo, "far", 1, "distant content", []float32{0, 0, 1})

	results, err := searcher.FindSimilar(ctx, "query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		name     string
		document string
		query    string
		expected bool
	}{
		{"all present", "the badger storage engine", "badger storage", true},
		{"missing word", "the badger engine", "badger storage", false},
		{"case and punctuation", "Badger, Storage!", "badger storage", true},
		{"stop words only", "some document text", "the a an", false},
		{"empty query", "some document text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsAllQueryWords(tt.document, tt.query))
		})
	}
}
