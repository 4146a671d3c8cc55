package factory

import (
	"testing"
	"time"

	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder(t *testing.T) {
	cfg := NewConfig(ProviderOpenAI).
		WithAPIKey("k").
		WithBaseURL("http://x/v1").
		WithModel("m").
		WithTimeout(time.Second).
		WithMaxRetries(1).
		WithRateLimit(2).
		WithHeader("a", "b").
		Build()

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "k", cfg.APIKey)
	assert.Equal(t, "http://x/v1", cfg.BaseURL)
	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, "b", cfg.Headers["a"])
}

func TestCreate(t *testing.T) {
	p, err := Create(NewConfig(ProviderOllama).Build(), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())

	p, err = Create(NewConfig(ProviderOpenAI).WithAPIKey("k").Build(), logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = Create(NewConfig("anthropic").Build(), logger.Nop())
	assert.Error(t, err)

	_, err = Create(nil, logger.Nop())
	assert.Error(t, err)
}

func TestFactory_WithBaseURLDoesNotMutateDefault(t *testing.T) {
	base := NewConfig(ProviderOllama).WithBaseURL("http://default:11434").Build()
	f := NewFactory(base, logger.Nop())

	p, err := f.WithBaseURL("http://other:11434")
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
	assert.Equal(t, "http://default:11434", base.BaseURL)

	_, err = f.Default()
	require.NoError(t, err)
}
