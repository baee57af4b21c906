package mock

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder is a test double for ai.Embedder used when exercising chunk
// indexing and query embedding without an embedding service. Behavior can be
// overridden per test through the function fields; with neither set, each
// text maps to a stable synthetic vector so similarity comparisons are
// repeatable across runs.
type MockEmbedder struct {
	// EmbedTextFunc overrides EmbedText when set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc overrides EmbedTexts when set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder returns a mock with the synthetic default behavior. The
// concrete type is returned so tests can set the override fields and read
// the call count.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText returns the synthetic vector for one text, or whatever
// EmbedTextFunc decides.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return syntheticVector(text, defaultDimensions), nil
}

// EmbedTexts returns one synthetic vector per text, or whatever
// EmbedTextsFunc decides. Batch re-embedding tests rely on the per-text
// determinism here.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = syntheticVector(text, defaultDimensions)
	}
	return vectors, nil
}

// CallCount reports how many embedding calls were made, counting both
// single and batch calls as one each.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any installed overrides.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// defaultDimensions matches the dimensionality of the small embedding
// models the production embedder is typically pointed at.
const defaultDimensions = 384

// syntheticVector derives a unit-length vector from the text. The text's
// FNV hash seeds a linear congruential generator, so equal texts always
// produce equal vectors and distinct texts almost never collide.
func syntheticVector(text string, dims int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	vector := make([]float32, dims)
	var sumSquares float64
	for i := range vector {
		state = state*1664525 + 1013904223
		component := float32(state%1000) / 1000.0
		vector[i] = component
		sumSquares += float64(component) * float64(component)
	}

	if sumSquares > 0 {
		scale := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector
}
