package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedChunker_Overlap(t *testing.T) {
	chunks, err := NewFixedChunker(FixedPlan{Size: 4, Overlap: 1}).Chunk(context.Background(), "abcdefghij")
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, []string{"abcd", "defg", "ghij"}, contents(chunks))
	assert.Equal(t, 0, chunks[0].Overlap)
	assert.Equal(t, 1, chunks[1].Overlap)
	assert.Equal(t, 1, chunks[2].Overlap)
	assert.Equal(t, 3, chunks[1].Start)
	assert.Equal(t, 10, chunks[2].End)
	assertIndexed(t, chunks)
}

func TestFixedChunker_Unicode(t *testing.T) {
	text := "héllo wörld"
	chunks, err := NewFixedChunker(FixedPlan{Size: 5}).Chunk(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, []string{"héllo", " wörl", "d"}, contents(chunks))
	assertLiteral(t, text, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, c.Size, 5)
		assert.Equal(t, "fixed", c.Strategy)
	}
}

func TestFixedChunker_OverlapNotLessThanSize(t *testing.T) {
	chunks, err := NewFixedChunker(FixedPlan{Size: 2, Overlap: 2}).Chunk(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, []string{"ab", "bc"}, contents(chunks))
	assert.Equal(t, 2, chunks[1].Overlap)
}

func TestFixedChunker_Tiles(t *testing.T) {
	text := strings.Repeat("0123456789", 7) + "xyz"
	chunks, err := NewFixedChunker(FixedPlan{Size: 16, Overlap: 5}).Chunk(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(text), chunks[len(chunks)-1].End)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].Start+11, chunks[i].Start)
	}
	assertLiteral(t, text, chunks)
}

func TestFixedChunker_Empty(t *testing.T) {
	chunks, err := NewFixedChunker(FixedPlan{Size: 4}).Chunk(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
