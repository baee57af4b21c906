package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Empty(t *testing.T) {
	assert.Empty(t, SplitText("", 100, 10))
	assert.Empty(t, SplitText("   \n\n\t  ", 100, 10))
}

func TestSplitText_ShorterThanChunkSize(t *testing.T) {
	chunks := SplitText("a short document", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0])
}

func TestSplitText_InvalidChunkSize(t *testing.T) {
	assert.Empty(t, SplitText("some text", 0, 10))
	assert.Empty(t, SplitText("some text", -5, 10))
}

func TestSplitText_PrefersParagraphBoundary(t *testing.T) {
	// The double newline sits inside the first window; the cut should land
	// just after it, not at the raw size boundary.
	text := "first paragraph here.\n\nsecond paragraph continues for a while longer"
	chunks := SplitText(text, 40, 0)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "first paragraph here.", chunks[0])
	assert.True(t, strings.HasPrefix(chunks[1], "second paragraph"))
}

func TestSplitText_FallsBackToNewline(t *testing.T) {
	text := "line one of the document\nline two keeps going for quite a while after"
	chunks := SplitText(text, 40, 0)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "line one of the document", chunks[0])
}

func TestSplitText_SentenceTerminators(t *testing.T) {
	t.Run("ascii", func(t *testing.T) {
		text := "First sentence ends here. Second sentence continues on and on and on"
		chunks := SplitText(text, 40, 0)
		require.GreaterOrEqual(t, len(chunks), 2)
		assert.Equal(t, "First sentence ends here.", chunks[0])
	})

	t.Run("cjk", func(t *testing.T) {
		text := "这是第一句话。这是第二句话，它比第一句话长很多很多很多很多很多很多很多很多很多很多"
		chunks := SplitText(text, 20, 0)
		require.GreaterOrEqual(t, len(chunks), 2)
		assert.Equal(t, "这是第一句话。", chunks[0])
	})
}

func TestSplitText_NoBoundaryRawCut(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := SplitText(text, 100, 20)

	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("a", 100), chunks[0])
	assert.Equal(t, strings.Repeat("a", 100), chunks[1])
	// Third window: starts at 160, runs to the end.
	assert.Equal(t, strings.Repeat("a", 90), chunks[2])
}

func TestSplitText_OverlapWindows(t *testing.T) {
	// Boundary-free input makes the windows deterministic: each chunk after
	// the first starts overlap runes before the previous cut.
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := SplitText(text, 10, 3)

	require.Len(t, chunks, 4)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "hijklmnopq", chunks[1])
	assert.Equal(t, "opqrstuvwx", chunks[2])
	assert.Equal(t, "vwxyz", chunks[3])
}

func TestSplitText_CoverageAndIterationBound(t *testing.T) {
	// For overlap < chunkSize on boundary-free text, chunking covers the
	// whole input and produces at most ceil(L/(chunkSize-overlap))+1 chunks.
	text := strings.Repeat("x", 10000)
	chunkSize, overlap := 100, 20
	chunks := SplitText(text, chunkSize, overlap)

	step := chunkSize - overlap
	maxChunks := (len(text)+step-1)/step + 1
	assert.LessOrEqual(t, len(chunks), maxChunks)

	var covered int
	for i, chunk := range chunks {
		if i > 0 {
			covered -= overlap
		}
		covered += len(chunk)
	}
	assert.Equal(t, len(text), covered, "chunks should cover the entire input")
}

func TestSplitText_DegenerateOverlapTerminates(t *testing.T) {
	// overlap >= chunkSize would stall the cursor without the
	// max(start+1, ...) rule. The call must terminate and still produce a
	// finite, non-empty sequence.
	text := strings.Repeat("b", 500)

	for _, overlap := range []int{10, 11, 50, 1000} {
		chunks := SplitText(text, 10, overlap)
		assert.NotEmpty(t, chunks, "overlap=%d", overlap)
		assert.LessOrEqual(t, len(chunks), len(text), "overlap=%d", overlap)
	}
}

func TestSplitText_NegativeOverlap(t *testing.T) {
	chunks := SplitText(strings.Repeat("c", 30), 10, -5)
	require.Len(t, chunks, 3)
}

func TestSplitText_RuneBoundaries(t *testing.T) {
	// Sizes are in runes, not bytes; multi-byte runes must never be split.
	text := strings.Repeat("界", 25)
	chunks := SplitText(text, 10, 2)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.True(t, strings.Count(chunk, "界") == len([]rune(chunk)),
			"chunk %d contains a torn rune: %q", i, chunk)
		assert.LessOrEqual(t, len([]rune(chunk)), 10)
	}
}
