package main

import (
	"fmt"
	"time"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/factory"
	"github.com/lk2023060901/text-chunker/internal/conf"
	"github.com/lk2023060901/text-chunker/internal/knowledge/chunker"
	"github.com/lk2023060901/text-chunker/internal/knowledge/embedding"
	"github.com/lk2023060901/text-chunker/internal/knowledge/loader"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/lk2023060901/text-chunker/internal/pkg/redis"
	"github.com/lk2023060901/text-chunker/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// URL 下载参数
const (
	fetchTimeout    = 30 * time.Second
	fetchMaxRetries = 2
)

// app 一次 CLI 调用所需的全部组件
type app struct {
	config  *conf.Config
	log     *logger.Logger
	engine  *chunker.Engine
	loaders *loader.Factory
	urls    *loader.URLLoader
	closers []func()
}

// newApp 根据配置组装日志、缓存、Embedding、LLM 与分块引擎
func newApp(config *conf.Config, verbose bool) (*app, error) {
	logConfig := config.Log.LoggerConfig()
	if verbose {
		logger.WithLevel("debug")(logConfig)
		logger.WithCaller(true)(logConfig)
	}
	if err := logger.InitGlobal(logConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.L()

	a := &app{config: config, log: log}

	var redisClient *redis.Client
	if kbtypes.CacheType(config.Embedding.Cache.Type) == kbtypes.CacheTypeRedis {
		var err error
		redisClient, err = redis.New(config.Redis.RedisClientConfig(), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := redisClient.Close(); err != nil && !redis.IsClosed(err) {
				log.Warn("failed to close redis", zap.Error(err))
			}
		})
	}

	embedders, err := embedding.NewFactory(embedding.CreateEmbedderConfig{
		Provider:          kbtypes.EmbeddingProvider(config.Embedding.Provider),
		Model:             config.Embedding.Model,
		Dimension:         config.Embedding.Dimension,
		APIKey:            config.Embedding.APIKey,
		BaseURL:           config.Embedding.BaseURL,
		Timeout:           config.Embedding.Timeout,
		MaxRetries:        config.Embedding.MaxRetries,
		RequestsPerSecond: config.Embedding.RequestsPerSecond,
		Cache: embedding.CacheConfig{
			Type:   kbtypes.CacheType(config.Embedding.Cache.Type),
			Size:   config.Embedding.Cache.Size,
			TTL:    config.Embedding.Cache.TTL,
			Prefix: config.Embedding.Cache.Prefix,
		},
	}, redisClient, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create embedding factory: %w", err)
	}

	llms := factory.NewFactory(factory.NewConfig(config.LLM.Provider).
		WithBaseURL(config.LLM.BaseURL).
		WithAPIKey(config.LLM.APIKey).
		WithModel(config.LLM.Model).
		WithTimeout(config.LLM.Timeout).
		WithMaxRetries(config.LLM.MaxRetries).
		WithRateLimit(config.LLM.RequestsPerSecond).
		Build(), log)

	opts := []chunker.EngineOption{
		chunker.WithLogger(log),
		chunker.WithEmbedders(embedders),
		chunker.WithLLM(llms),
		chunker.WithDefaultPrompt(config.LLM.Prompt),
	}

	if n := config.Embedding.Concurrency; n > 1 {
		pool, err := workerpool.New(&workerpool.Config{Workers: n}, log.Logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create worker pool: %w", err)
		}
		a.closers = append(a.closers, pool.Release)
		opts = append(opts, chunker.WithWorkerPool(pool))
	}

	a.engine = chunker.NewEngine(opts...)
	a.loaders = loader.NewFactory()
	a.urls = loader.NewURLLoader(httpx.New(httpx.Config{
		Timeout:    fetchTimeout,
		MaxRetries: fetchMaxRetries,
	}, log), a.loaders, log)
	log.Debug("chunk cli initialized",
		zap.String("embedding_provider", config.Embedding.Provider),
		zap.String("embedding_cache", config.Embedding.Cache.Type),
		zap.String("llm_provider", config.LLM.Provider),
		zap.Int("embedding_concurrency", config.Embedding.Concurrency),
	)
	return a, nil
}

// close 按创建的逆序释放资源
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = logger.Sync()
}
