package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/lk2023060901/text-chunker/internal/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder 记录调用次数的 Embedder
type countingEmbedder struct {
	calls int
	fail  bool
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *countingEmbedder) BatchEmbed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls += len(texts)
	if c.fail {
		return nil, errors.New("down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (c *countingEmbedder) Dimension() int                      { return 2 }
func (c *countingEmbedder) Provider() kbtypes.EmbeddingProvider { return kbtypes.EmbeddingProviderOllama }
func (c *countingEmbedder) Model() string                       { return "fake" }

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := redis.DefaultConfig()
	cfg.Addr = mr.Addr()
	client, err := redis.New(cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour)
}

func TestCacheEmbedder_Stores(t *testing.T) {
	stores := map[string]func(t *testing.T) CacheStore{
		"memory": func(*testing.T) CacheStore { return NewMemoryStore(16, 0) },
		"redis":  func(t *testing.T) CacheStore { return newRedisStore(t) },
	}

	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			inner := &countingEmbedder{}
			e := NewCacheEmbedder(inner, mk(t), "", logger.Nop())
			ctx := context.Background()

			v1, err := e.Embed(ctx, "abc")
			require.NoError(t, err)
			v2, err := e.Embed(ctx, "abc")
			require.NoError(t, err)
			assert.Equal(t, v1, v2)
			assert.Equal(t, 1, inner.calls)

			vecs, err := e.BatchEmbed(ctx, []string{"abc", "de", "fgh"})
			require.NoError(t, err)
			assert.Equal(t, [][]float32{{3, 1}, {2, 1}, {3, 1}}, vecs)
			assert.Equal(t, 3, inner.calls)

			assert.Equal(t, 2, e.Dimension())
			assert.Equal(t, "fake", e.Model())
			assert.Equal(t, kbtypes.EmbeddingProviderOllama, e.Provider())
		})
	}
}

func TestCacheEmbedder_ErrorsAreNotCached(t *testing.T) {
	inner := &countingEmbedder{fail: true}
	store := NewMemoryStore(16, 0)
	e := NewCacheEmbedder(inner, store, "p:", logger.Nop())

	_, err := e.Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestCacheEmbedder_KeyIncludesModel(t *testing.T) {
	e := NewCacheEmbedder(&countingEmbedder{}, NewMemoryStore(1, 0), "p:", logger.Nop())
	key := e.cacheKey("hello")
	assert.Contains(t, key, "p:fake:")
	assert.Len(t, key, len("p:fake:")+64)
}

func TestMemoryStore_Expires(t *testing.T) {
	store := NewMemoryStore(4, 10*time.Millisecond)
	require.NoError(t, store.Set(context.Background(), "k", []float32{1}))
	assert.Eventually(t, func() bool {
		_, ok, _ := store.Get(context.Background(), "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
