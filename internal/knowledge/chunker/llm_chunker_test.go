package chunker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLLM(t *testing.T, cfg *LLMChunkerConfig) *LLMChunker {
	t.Helper()
	c, err := NewLLMChunker(cfg)
	require.NoError(t, err)
	return c
}

func TestLLMChunker_TaggedSpans(t *testing.T) {
	text := "Cats purr. Cars honk."
	provider := &fakeProvider{
		response: "<CHUNK_START>Cats purr.<CHUNK_END>\n<CHUNK_START>  <CHUNK_END><CHUNK_START>\nCars honk.\n<CHUNK_END>",
	}
	c := newLLM(t, &LLMChunkerConfig{Provider: provider, Model: "llama3", Embedder: &topicEmbedder{}})

	chunks, err := c.Chunk(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "Cats purr.", chunks[0].Content)
	assert.Equal(t, "Cars honk.", chunks[1].Content)
	assert.Equal(t, "llm", chunks[0].Strategy)
	assert.Equal(t, []float32{1, 0}, chunks[0].Embedding)
	assert.Equal(t, []float32{0, 1}, chunks[1].Embedding)
	assertLiteral(t, text, chunks)
	assertIndexed(t, chunks)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, "llama3", req.Model)
	assert.False(t, req.Stream)
	assert.Equal(t, DefaultChunkPrompt+"\n\n"+text, req.Prompt)
}

func TestLLMChunker_CustomPrompt(t *testing.T) {
	provider := &fakeProvider{response: "<CHUNK_START>x<CHUNK_END>"}
	c := newLLM(t, &LLMChunkerConfig{Provider: provider, Prompt: "Split it."})

	_, err := c.Chunk(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Split it.\n\nx", provider.requests[0].Prompt)
}

func TestLLMChunker_NoTags(t *testing.T) {
	provider := &fakeProvider{response: "  whatever the model said  "}
	c := newLLM(t, &LLMChunkerConfig{Provider: provider})

	chunks, err := c.Chunk(context.Background(), "original input")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "whatever the model said", chunks[0].Content)
	assert.Equal(t, reasonNoChunkTags, chunks[0].Source)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 23, chunks[0].End)
	assert.Nil(t, chunks[0].Embedding)
}

func TestLLMChunker_EmptyResponse(t *testing.T) {
	c := newLLM(t, &LLMChunkerConfig{Provider: &fakeProvider{response: " \n"}})

	chunks, err := c.Chunk(context.Background(), "some input")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestLLMChunker_RewrittenSpans(t *testing.T) {
	text := "Alpha beta. Gamma delta."
	provider := &fakeProvider{
		response: "<CHUNK_START>Alpha beta.<CHUNK_END><CHUNK_START>Rewritten text<CHUNK_END><CHUNK_START>delta.<CHUNK_END>",
	}
	c := newLLM(t, &LLMChunkerConfig{Provider: provider})

	chunks, err := c.Chunk(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, 11, chunks[1].Start)
	assert.Equal(t, 11+len("Rewritten text"), chunks[1].End)
	assert.Equal(t, strings.Index(text, "delta."), chunks[2].Start)
}

func TestLLMChunker_EmbeddingFailureOmitted(t *testing.T) {
	provider := &fakeProvider{response: "<CHUNK_START>Cats fail.<CHUNK_END><CHUNK_START>Cats win.<CHUNK_END>"}
	c := newLLM(t, &LLMChunkerConfig{Provider: provider, Embedder: &topicEmbedder{}})

	chunks, err := c.Chunk(context.Background(), "Cats fail. Cats win.")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Nil(t, chunks[0].Embedding)
	assert.Equal(t, []float32{1, 0}, chunks[1].Embedding)
}

func TestLLMChunker_ProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unavailable", types.NewUnavailableError("fake", "down", errors.New("refused")), apperrors.ErrProviderUnavailable},
		{"malformed", types.NewMalformedError("fake", "bad json", nil), apperrors.ErrMalformedResponse},
		{"unknown", errors.New("boom"), apperrors.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newLLM(t, &LLMChunkerConfig{Provider: &fakeProvider{err: tt.err}})
			_, err := c.Chunk(context.Background(), "text")
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.ExtractCode(err))
		})
	}
}

func TestLLMChunker_ClosesOwnedProvider(t *testing.T) {
	provider := &fakeProvider{response: "<CHUNK_START>x<CHUNK_END>"}
	c := newLLM(t, &LLMChunkerConfig{Provider: provider, CloseProvider: true})

	_, err := c.Chunk(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, provider.closed)
}

func TestNewLLMChunker_RequiresProvider(t *testing.T) {
	_, err := NewLLMChunker(&LLMChunkerConfig{})
	assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
}
