package chunker

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/lk2023060901/text-chunker/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// Engine 分块入口：解析参数、分发到具体策略并组装结果
// 每次调用相互独立，可并发使用
type Engine struct {
	factory *Factory
	logger  *logger.Logger
}

// EngineOption Engine 配置项
type EngineOption func(*Factory)

// WithEmbedders 设置 Embedding 来源
func WithEmbedders(src EmbedderSource) EngineOption {
	return func(f *Factory) {
		f.embedders = src
	}
}

// WithLLM 设置 LLM Provider 来源
func WithLLM(src LLMSource) EngineOption {
	return func(f *Factory) {
		f.llms = src
	}
}

// WithWorkerPool 语义分块并发请求向量
func WithWorkerPool(pool *workerpool.Pool) EngineOption {
	return func(f *Factory) {
		f.pool = pool
	}
}

// WithLogger 设置 Logger
func WithLogger(lgr *logger.Logger) EngineOption {
	return func(f *Factory) {
		if lgr != nil {
			f.logger = lgr
		}
	}
}

// WithEmbeddingFallback 设置语义分块中向量化失败的处理策略
func WithEmbeddingFallback(fallback EmbeddingFallback) EngineOption {
	return func(f *Factory) {
		if fallback != nil {
			f.fallback = fallback
		}
	}
}

// WithDefaultPrompt 设置 LLM 分块的默认指令
func WithDefaultPrompt(prompt string) EngineOption {
	return func(f *Factory) {
		f.prompt = prompt
	}
}

// NewEngine 创建分块引擎
func NewEngine(opts ...EngineOption) *Engine {
	f := NewFactory(nil, nil, nil)
	for _, opt := range opts {
		opt(f)
	}
	return &Engine{
		factory: f,
		logger:  f.logger.Named("chunker"),
	}
}

// ChunkText 按 opts 指定的策略对文本分块
func (e *Engine) ChunkText(ctx context.Context, text string, opts Options) (*Result, error) {
	started := time.Now()

	plan, err := opts.Plan()
	if err != nil {
		return nil, err
	}
	strategy := plan.Strategy()

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	ctx = logger.WithStrategy(ctx, strategy.String())
	log := e.logger.WithContext(ctx)

	log.Debug("chunking started",
		zap.Int("bytes", len(text)),
		zap.String("source_file", opts.Source),
	)

	c, err := e.factory.CreateChunker(ctx, plan)
	if err != nil {
		log.Error("failed to create chunker", zap.Error(err))
		return nil, err
	}

	chunks, err := c.Chunk(ctx, text)
	if err != nil {
		log.Error("chunking failed", zap.Error(err))
		return nil, err
	}
	if chunks == nil {
		chunks = []*Chunk{}
	}
	if len(chunks) == 1 && strings.HasSuffix(chunks[0].Source, "treated as single chunk") {
		log.Warn("degraded to single chunk", zap.String("reason", chunks[0].Source))
	}

	totalSize := 0
	embedded := false
	for _, chunk := range chunks {
		totalSize += chunk.Size
		embedded = embedded || len(chunk.Embedding) > 0
	}
	params := opts.parameters()
	if !embedded {
		// 未产生向量时不回显向量相关参数
		params.Threshold = nil
		params.Model = ""
	}
	var avg float32
	if len(chunks) > 0 {
		avg = float32(totalSize) / float32(len(chunks))
	}

	result := &Result{
		Chunks:         chunks,
		TotalChunks:    len(chunks),
		OriginalLength: runeLen(text),
		Strategy:       strategy.String(),
		Parameters:     params,
		Metadata: Metadata{
			ProcessingTimeMs: time.Since(started).Milliseconds(),
			TotalSize:        len(text),
			AverageChunkSize: avg,
			EmbeddingsUsed:   embedded,
			SourceFile:       opts.Source,
			RunID:            runID,
		},
	}

	log.Debug("chunking finished",
		zap.Int("chunks", result.TotalChunks),
		zap.Int64("elapsed_ms", result.Metadata.ProcessingTimeMs),
	)
	return result, nil
}
