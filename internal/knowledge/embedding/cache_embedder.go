package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
)

// DefaultCachePrefix 缓存键默认前缀
const DefaultCachePrefix = "chunk:embedding:"

// CacheEmbedder 带缓存的 Embedder 装饰器
type CacheEmbedder struct {
	embedder Embedder
	store    CacheStore
	prefix   string
	logger   *logger.Logger
}

// NewCacheEmbedder 创建带缓存的 Embedder
func NewCacheEmbedder(embedder Embedder, store CacheStore, prefix string, lgr *logger.Logger) *CacheEmbedder {
	if prefix == "" {
		prefix = DefaultCachePrefix
	}

	var log *logger.Logger
	if lgr == nil {
		log = logger.L()
	} else {
		log = lgr
	}

	return &CacheEmbedder{
		embedder: embedder,
		store:    store,
		prefix:   prefix,
		logger:   log,
	}
}

// Embed 对单个文本生成向量（带缓存）
func (e *CacheEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	cacheKey := e.cacheKey(text)

	if cached, ok := e.lookup(ctx, cacheKey); ok {
		e.logger.Debug("embedding cache hit",
			zap.String("cache_key", cacheKey))
		return cached, nil
	}

	embedding, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.save(ctx, cacheKey, embedding)
	return embedding, nil
}

// BatchEmbed 批量生成向量（带缓存），只请求未命中的文本
func (e *CacheEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	missingIndices := make([]int, 0)
	missingTexts := make([]string, 0)

	for i, text := range texts {
		if cached, ok := e.lookup(ctx, e.cacheKey(text)); ok {
			results[i] = cached
			continue
		}
		missingIndices = append(missingIndices, i)
		missingTexts = append(missingTexts, text)
	}

	e.logger.Debug("batch embedding cache stats",
		zap.Int("total", len(texts)),
		zap.Int("cache_hits", len(texts)-len(missingTexts)),
		zap.Int("cache_misses", len(missingTexts)))

	if len(missingTexts) == 0 {
		return results, nil
	}

	embeddings, err := e.embedder.BatchEmbed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}

	for i, embedding := range embeddings {
		results[missingIndices[i]] = embedding
		e.save(ctx, e.cacheKey(missingTexts[i]), embedding)
	}

	return results, nil
}

// Dimension 返回向量维度
func (e *CacheEmbedder) Dimension() int {
	return e.embedder.Dimension()
}

// Provider 返回 Provider 名称
func (e *CacheEmbedder) Provider() kbtypes.EmbeddingProvider {
	return e.embedder.Provider()
}

// Model 返回模型名称
func (e *CacheEmbedder) Model() string {
	return e.embedder.Model()
}

// cacheKey 模型名 + 文本 SHA-256
func (e *CacheEmbedder) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%s:%s", e.prefix, e.Model(), hex.EncodeToString(hash[:]))
}

// lookup 缓存读取失败按未命中处理
func (e *CacheEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	vec, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("failed to read embedding cache",
			zap.String("cache_key", key),
			zap.Error(err))
		return nil, false
	}
	return vec, ok
}

func (e *CacheEmbedder) save(ctx context.Context, key string, vec []float32) {
	if err := e.store.Set(ctx, key, vec); err != nil {
		e.logger.Warn("failed to cache embedding",
			zap.String("cache_key", key),
			zap.Error(err))
	}
}
