package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EmptyText(t *testing.T) {
	c := New()
	assert.Nil(t, c.Chunk("doc-1", "", nil))
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c := New()
	chunks := c.Chunk("doc-1", "short text", nil)

	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Position)
	assert.Equal(t, 0, chunks[0].Overlap)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 10, chunks[0].EndOffset)
}

func TestChunk_OverlappingWindows(t *testing.T) {
	// 3000 uniform characters with no break opportunities: hard splits
	// every 1000 with 100 bytes of overlap give exactly four chunks
	c := New(WithSize(1000), WithOverlap(100), WithMinSize(200), WithTolerance(200))
	text := strings.Repeat("a", 3000)

	chunks := c.Chunk("doc-1", text, nil)

	require.Len(t, chunks, 4)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 1000, chunks[0].EndOffset)
	assert.Equal(t, 900, chunks[1].StartOffset)
	assert.Equal(t, 1900, chunks[1].EndOffset)
	assert.Equal(t, 1800, chunks[2].StartOffset)
	assert.Equal(t, 2800, chunks[2].EndOffset)
	assert.Equal(t, 2700, chunks[3].StartOffset)
	assert.Equal(t, 3000, chunks[3].EndOffset)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		if i > 0 {
			assert.Equal(t, 100, chunk.Overlap)
			// The overlap region repeats the predecessor's tail
			assert.Equal(t,
				chunks[i-1].Content[len(chunks[i-1].Content)-100:],
				chunk.Content[:100])
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := New(WithSize(500), WithOverlap(50))
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40)

	first := c.Chunk("doc-1", text, []int{100, 500, 900})
	second := c.Chunk("doc-1", text, []int{100, 500, 900})

	require.Equal(t, first, second)
	for i := range first {
		assert.NotEmpty(t, first[i].ID)
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestChunk_DifferentDocumentsGetDifferentIDs(t *testing.T) {
	c := New()
	a := c.Chunk("doc-a", "some text", nil)
	b := c.Chunk("doc-b", "some text", nil)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].ID, b[0].ID)
}

func TestChunk_PrefersSentenceBoundary(t *testing.T) {
	c := New(WithSize(100), WithOverlap(10), WithMinSize(20), WithTolerance(30))

	// Sentence ends at offset 79, inside the tolerance window (70, 100)
	text := strings.Repeat("x", 78) + ". " + strings.Repeat("y", 70)

	chunks := c.Chunk("doc-1", text, nil)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 79, chunks[0].EndOffset)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "."))
}

func TestChunk_PrefersSectionBoundaryOverSentence(t *testing.T) {
	c := New(WithSize(100), WithOverlap(10), WithMinSize(20), WithTolerance(30))

	// Both a sentence end (79) and a section boundary (85) fall in the
	// window; the section boundary wins
	text := strings.Repeat("x", 78) + ". " + strings.Repeat("y", 120)

	chunks := c.Chunk("doc-1", text, []int{85})

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 85, chunks[0].EndOffset)
}

func TestChunk_ForcedSplitWithoutBoundaries(t *testing.T) {
	c := New(WithSize(100), WithOverlap(10), WithMinSize(20), WithTolerance(30))
	text := strings.Repeat("z", 250)

	chunks := c.Chunk("doc-1", text, nil)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, 100, chunks[0].EndOffset)
}

func TestChunk_MergesTinyTrailingChunk(t *testing.T) {
	c := New(WithSize(100), WithOverlap(10), WithMinSize(20), WithTolerance(30))

	// The trailing window would hold only 5 novel bytes, below the
	// minimum, so it merges into its predecessor
	text := strings.Repeat("z", 105)

	chunks := c.Chunk("doc-1", text, nil)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 105, chunks[0].EndOffset)
	assert.Equal(t, text, chunks[0].Content)
}

func TestChunk_KeepsTrailingChunkAtMinimum(t *testing.T) {
	c := New(WithSize(1000), WithOverlap(100), WithMinSize(200), WithTolerance(200))

	// The final chunk carries exactly minSize novel bytes and survives
	text := strings.Repeat("a", 3000)
	chunks := c.Chunk("doc-1", text, nil)

	require.Len(t, chunks, 4)
	last := chunks[3]
	assert.Equal(t, 200, len(last.Content)-last.Overlap)
}

func TestChunk_CoversAllText(t *testing.T) {
	c := New(WithSize(300), WithOverlap(30))
	text := strings.Repeat("lorem ipsum dolor sit amet. ", 50)

	chunks := c.Chunk("doc-1", text, nil)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(text), chunks[len(chunks)-1].EndOffset)
	for i := 1; i < len(chunks); i++ {
		// No gaps between consecutive chunks
		assert.LessOrEqual(t, chunks[i].StartOffset, chunks[i-1].EndOffset)
		assert.Greater(t, chunks[i].EndOffset, chunks[i-1].EndOffset)
	}
}

func TestNew_GuardsDegenerateOverlap(t *testing.T) {
	c := New(WithSize(100), WithOverlap(100))
	text := strings.Repeat("a", 500)

	chunks := c.Chunk("doc-1", text, nil)

	// Overlap >= size would stall; the guard must keep forward progress
	require.NotEmpty(t, chunks)
	assert.Equal(t, len(text), chunks[len(chunks)-1].EndOffset)
}
