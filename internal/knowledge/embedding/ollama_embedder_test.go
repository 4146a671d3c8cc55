package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOllamaTestEmbedder(t *testing.T, handler http.HandlerFunc) *OllamaEmbedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	e, err := NewOllamaEmbedder(&OllamaEmbedderConfig{
		BaseURL:    server.URL + "/",
		Timeout:    2 * time.Second,
		MaxRetries: 0,
	}, logger.Nop())
	require.NoError(t, err)
	return e
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	e := newOllamaTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, "hello", req.Prompt)

		_, _ = w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	})

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, DefaultDimension, e.Dimension())
	assert.Equal(t, kbtypes.EmbeddingProviderOllama, e.Provider())
	assert.Equal(t, DefaultModel, e.Model())
}

func TestOllamaEmbedder_BatchEmbed(t *testing.T) {
	e := newOllamaTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Prompt == "a" {
			_, _ = w.Write([]byte(`{"embedding":[1,0]}`))
			return
		}
		_, _ = w.Write([]byte(`{"embedding":[0,1]}`))
	})

	vecs, err := e.BatchEmbed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestOllamaEmbedder_MalformedResponses(t *testing.T) {
	bodies := map[string]string{
		"missing field": `{"error":"x"}`,
		"not array":     `{"embedding":"abc"}`,
		"non numeric":   `{"embedding":[1,"x"]}`,
		"empty":         `{"embedding":[]}`,
		"invalid json":  `{{`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			e := newOllamaTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			_, err := e.Embed(context.Background(), "x")
			pe, ok := types.AsProviderError(err)
			require.True(t, ok)
			assert.True(t, pe.IsMalformed())
		})
	}
}

func TestOllamaEmbedder_Unavailable(t *testing.T) {
	e := newOllamaTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := e.Embed(context.Background(), "x")
	pe, ok := types.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeUnavailable, pe.Type)
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode)
}
