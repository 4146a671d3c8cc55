package embedding

import (
	"fmt"
	"sync"
	"time"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/factory"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/lk2023060901/text-chunker/internal/pkg/redis"
	"go.uber.org/zap"
)

// CacheConfig 缓存配置
type CacheConfig struct {
	Type   kbtypes.CacheType
	Size   int           // memory 缓存条目上限
	TTL    time.Duration // 过期时间，0 表示不过期
	Prefix string        // 缓存键前缀
}

// CreateEmbedderConfig 创建 Embedder 配置
type CreateEmbedderConfig struct {
	Provider          kbtypes.EmbeddingProvider
	Model             string
	Dimension         int
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Cache             CacheConfig
}

// Factory Embedder 工厂，按模型名缓存已创建的 Embedder
type Factory struct {
	*factory.BaseFactory
	base  CreateEmbedderConfig
	redis *redis.Client
	store CacheStore

	mu        sync.Mutex
	embedders map[string]Embedder
}

// NewFactory 创建 Embedder 工厂
// cache.Type 为 redis 时 redisClient 必须非空
func NewFactory(base CreateEmbedderConfig, redisClient *redis.Client, lgr *logger.Logger) (*Factory, error) {
	if base.Provider == "" {
		base.Provider = kbtypes.EmbeddingProviderOllama
	}
	if !base.Provider.Valid() {
		return nil, fmt.Errorf("unsupported embedding provider: %s", base.Provider)
	}
	if !base.Cache.Type.Valid() {
		return nil, fmt.Errorf("unsupported embedding cache type: %s", base.Cache.Type)
	}

	f := &Factory{
		BaseFactory: factory.NewBaseFactory("embedding", lgr),
		base:        base,
		redis:       redisClient,
		embedders:   make(map[string]Embedder),
	}

	switch base.Cache.Type {
	case kbtypes.CacheTypeMemory:
		f.store = NewMemoryStore(base.Cache.Size, base.Cache.TTL)
	case kbtypes.CacheTypeRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis client is required for redis embedding cache")
		}
		f.store = NewRedisStore(redisClient, base.Cache.TTL)
	}

	return f, nil
}

// ForModel 返回指定模型的 Embedder，model 为空时使用默认模型
func (f *Factory) ForModel(model string) (Embedder, error) {
	if model == "" {
		model = f.base.Model
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok := f.embedders[model]; ok {
		return e, nil
	}

	cfg := f.base
	cfg.Model = model
	e, err := f.CreateEmbedder(&cfg)
	if err != nil {
		return nil, err
	}
	f.embedders[model] = e
	return e, nil
}

// CreateEmbedder 创建 Embedder
func (f *Factory) CreateEmbedder(cfg *CreateEmbedderConfig) (Embedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var embedder Embedder
	var err error

	switch cfg.Provider {
	case kbtypes.EmbeddingProviderOllama:
		embedder, err = NewOllamaEmbedder(&OllamaEmbedderConfig{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimension:         cfg.Dimension,
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, f.Logger())

	case kbtypes.EmbeddingProviderOpenAI:
		embedder, err = NewOpenAIEmbedder(&OpenAIEmbedderConfig{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimension:         cfg.Dimension,
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, f.Logger())

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	if f.store != nil {
		embedder = NewCacheEmbedder(embedder, f.store, cfg.Cache.Prefix, f.Logger())
	}

	f.LogCreated("embedder",
		zap.String("provider", cfg.Provider.String()),
		zap.String("model", embedder.Model()),
		zap.Int("dimension", embedder.Dimension()))

	return embedder, nil
}
