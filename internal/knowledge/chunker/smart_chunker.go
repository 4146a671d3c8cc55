package chunker

import (
	"context"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
)

// SmartChunker 先按语义切分，再对超过 2 倍目标大小的块按句子切分
// 语义切分失败时对全文按句子切分
type SmartChunker struct {
	targetSize int
	semantic   Chunker
	sentence   *SentenceChunker
	logger     *logger.Logger
}

// NewSmartChunker 创建 Smart 分块器
// semantic 为空表示没有可用的 Embedding 服务，直接按句子切分
func NewSmartChunker(plan SmartPlan, semantic Chunker, lgr *logger.Logger) *SmartChunker {
	if plan.TargetSize <= 0 {
		plan.TargetSize = DefaultSize
	}
	if lgr == nil {
		lgr = logger.Nop()
	}
	return &SmartChunker{
		targetSize: plan.TargetSize,
		semantic:   semantic,
		sentence:   NewSentenceChunker(SentencePlan{TargetSize: plan.TargetSize}),
		logger:     lgr,
	}
}

// Chunk 实现 Chunker 接口
func (c *SmartChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	if c.semantic == nil {
		c.logger.WithContext(ctx).Warn("no embedding provider, falling back to sentence chunking")
		return c.sentence.Chunk(ctx, text)
	}

	semantic, err := c.semantic.Chunk(ctx, text)
	if err != nil {
		if canceled(ctx, err) {
			return nil, err
		}
		c.logger.WithContext(ctx).Warn("semantic chunking failed, falling back to sentence chunking", zap.Error(err))
		return c.sentence.Chunk(ctx, text)
	}

	out := make([]*Chunk, 0, len(semantic))
	for _, chunk := range semantic {
		if chunk.Size <= 2*c.targetSize {
			out = append(out, chunk)
			continue
		}

		subs, err := c.sentence.Chunk(ctx, chunk.Content)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			sub.Start += chunk.Start
			sub.End += chunk.Start
			sub.Strategy = kbtypes.ChunkStrategySmart.String()
			out = append(out, sub)
		}
	}

	return reindex(out), nil
}
