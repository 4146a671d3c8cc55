package chunker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceChunker_SingleChunk(t *testing.T) {
	chunks, err := NewSentenceChunker(SentencePlan{TargetSize: 100}).Chunk(context.Background(), "A. B. C.")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "A. B. C.", chunks[0].Content)
	assert.Equal(t, "sentence", chunks[0].Strategy)
}

func TestSentenceChunker_Greedy(t *testing.T) {
	text := "One two. Three four. Five six."
	chunks, err := NewSentenceChunker(SentencePlan{TargetSize: 10}).Chunk(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, []string{"One two.", "Three four.", "Five six."}, contents(chunks))
	assertLiteral(t, text, chunks)
	assertOrdered(t, chunks)
	assertIndexed(t, chunks)
}

func TestSentenceChunker_Accumulates(t *testing.T) {
	text := "One two. Three four. Five six."
	chunks, err := NewSentenceChunker(SentencePlan{TargetSize: 21}).Chunk(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, []string{"One two. Three four.", "Five six."}, contents(chunks))
	assertLiteral(t, text, chunks)
}

func TestSentenceChunker_Blank(t *testing.T) {
	chunks, err := NewSentenceChunker(SentencePlan{TargetSize: 10}).Chunk(context.Background(), " \n\t ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestParagraphChunker(t *testing.T) {
	text := "p1 line\n\np2 line\n\np3"

	chunks, err := NewParagraphChunker(ParagraphPlan{TargetSize: 12}).Chunk(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1 line", "p2 line\n\np3"}, contents(chunks))
	assertLiteral(t, text, chunks)

	chunks, err = NewParagraphChunker(ParagraphPlan{TargetSize: 500}).Chunk(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, "paragraph", chunks[0].Strategy)
}
