package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/corpit/ai"
	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/storage"
	"github.com/poiesic/corpit/vector"
)

// defaultMinSimilarity is the similarity floor for semantic matches.
const defaultMinSimilarity = 0.60

// verbatimBoost is added when every meaningful query word appears in the
// chunk text.
const verbatimBoost = 0.3

// Searcher provides semantic similarity search over indexed chunks.
type Searcher struct {
	chunks        storage.ChunkRepository
	embedder      ai.Embedder
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the similarity floor for semantic matches.
// Default is 0.60.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	chunks storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		chunks:        chunks,
		embedder:      provider.Embedder(),
		minSimilarity: defaultMinSimilarity,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches for chunks similar to the query across all knowledge
// bases. Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]*core.ChunkMatch, error) {
	return s.findSimilar(ctx, query, 0, maxHits)
}

// FindSimilarInKnowledgeBase restricts the search to one knowledge base.
func (s *Searcher) FindSimilarInKnowledgeBase(ctx context.Context, query string, kbID core.ID, maxHits int) ([]*core.ChunkMatch, error) {
	return s.findSimilar(ctx, query, kbID, maxHits)
}

// findSimilar embeds the query, ranks chunks by dot product, applies the
// verbatim-match boost, and truncates to maxHits. kbID 0 means no filter.
func (s *Searcher) findSimilar(ctx context.Context, query string, kbID core.ID, maxHits int) ([]*core.ChunkMatch, error) {
	if maxHits < 1 {
		return nil, ErrInvalidMaxHits
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	// Stored vectors are unit length; the query must be too for the dot
	// product to behave as cosine similarity.
	embedding = vector.Normalize(embedding)

	// Over-fetch when filtering by knowledge base, since the floor-and-limit
	// happens before the filter.
	fetch := maxHits
	if kbID != 0 {
		fetch = maxHits * 8
	}

	matches, err := s.chunks.FindSimilar(ctx, embedding, s.minSimilarity, fetch)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	results := make([]*core.ChunkMatch, 0, len(matches))
	for _, match := range matches {
		if kbID != 0 && match.Chunk.KnowledgeBaseId != kbID {
			continue
		}

		score := match.Score
		if containsAllQueryWords(match.Chunk.Content, query) {
			score += verbatimBoost
		}
		results = append(results, &core.ChunkMatch{Chunk: match.Chunk, Score: score})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}

	return results, nil
}
