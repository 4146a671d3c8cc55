package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestEmbedder(t *testing.T, handler http.HandlerFunc) *OpenAIEmbedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	e, err := NewOpenAIEmbedder(&OpenAIEmbedderConfig{
		APIKey:    "sk-test",
		BaseURL:   server.URL + "/v1",
		Model:     "text-embedding-3-small",
		Dimension: 3,
		Timeout:   2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	return e
}

func TestOpenAIEmbedder_BatchEmbedRestoresOrder(t *testing.T) {
	e := newOpenAITestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[
			{"object":"embedding","index":1,"embedding":[0,1,0]},
			{"object":"embedding","index":0,"embedding":[1,0,0]}
		],"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	})

	vecs, err := e.BatchEmbed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}}, vecs)

	empty, err := e.BatchEmbed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpenAIEmbedder_CountMismatchIsMalformed(t *testing.T) {
	e := newOpenAITestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	_, err := e.Embed(context.Background(), "a")
	pe, ok := types.AsProviderError(err)
	require.True(t, ok)
	assert.True(t, pe.IsMalformed())
}

func TestOpenAIEmbedder_APIError(t *testing.T) {
	e := newOpenAITestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad input","type":"invalid_request_error"}}`))
	})

	_, err := e.Embed(context.Background(), "a")
	pe, ok := types.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeUnavailable, pe.Type)
	assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
}

func TestNewOpenAIEmbedder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(&OpenAIEmbedderConfig{}, logger.Nop())
	assert.Error(t, err)
}
