package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(&types.Config{
		BaseURL: server.URL,
		Model:   "llama3.2",
		Timeout: 2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)
	return p
}

func TestGenerate_Success(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req types.GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.Equal(t, "split this", req.Prompt)
		assert.False(t, req.Stream)

		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"<CHUNK_START>a<CHUNK_END>","done":true}`))
	})

	resp, err := p.Generate(context.Background(), types.GenerateRequest{Prompt: "split this", Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "<CHUNK_START>a<CHUNK_END>", resp.Response)
	assert.True(t, resp.Done)
	assert.Equal(t, "ollama", p.Name())
	assert.NoError(t, p.Close())
}

func TestGenerate_MissingResponseField(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	})

	_, err := p.Generate(context.Background(), types.GenerateRequest{Prompt: "x"})
	pe, ok := types.AsProviderError(err)
	require.True(t, ok)
	assert.True(t, pe.IsMalformed())
}

func TestGenerate_InvalidJSON(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := p.Generate(context.Background(), types.GenerateRequest{Prompt: "x"})
	pe, ok := types.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeMalformedResponse, pe.Type)
}

func TestGenerate_ServerError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	})

	_, err := p.Generate(context.Background(), types.GenerateRequest{Prompt: "x"})
	pe, ok := types.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeUnavailable, pe.Type)
	assert.Equal(t, http.StatusNotFound, pe.StatusCode)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	p, err := New(&types.Config{Model: "m"}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, p.config.BaseURL)
}
