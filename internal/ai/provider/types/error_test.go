package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnavailableError_CapturesStatus(t *testing.T) {
	err := NewUnavailableError("ollama", "request failed", &httpx.StatusError{StatusCode: 503, Body: "down"})

	assert.Equal(t, 503, err.StatusCode)
	assert.Equal(t, "unavailable", err.FailureType())
	assert.Contains(t, err.Error(), "[ollama][unavailable][503]")
	assert.False(t, err.IsMalformed())
}

func TestNewMalformedError(t *testing.T) {
	err := NewMalformedError("ollama", "missing response field", nil)
	assert.True(t, err.IsMalformed())
	assert.Equal(t, "[ollama][malformed_response] missing response field", err.Error())
}

func TestAsProviderError(t *testing.T) {
	base := NewUnavailableError("openai", "request failed", context.DeadlineExceeded)
	wrapped := fmt.Errorf("llm: %w", base)

	pe, ok := AsProviderError(wrapped)
	require.True(t, ok)
	assert.Same(t, base, pe)
	assert.True(t, IsCanceled(wrapped))

	_, ok = AsProviderError(errors.New("plain"))
	assert.False(t, ok)
}

func TestConfig_ValidateAndClone(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingBaseURL)

	cfg = &Config{BaseURL: "http://x", Headers: map[string]string{"a": "b"}}
	require.NoError(t, cfg.Validate())
	assert.NotZero(t, cfg.Timeout)

	cp := cfg.Clone()
	cp.Headers["a"] = "c"
	cp.BaseURL = "http://y"
	assert.Equal(t, "b", cfg.Headers["a"])
	assert.Equal(t, "http://x", cfg.BaseURL)
}
