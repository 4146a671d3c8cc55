package chunker

import (
	"context"
	"math"
	"strings"

	"github.com/lk2023060901/text-chunker/internal/knowledge/embedding"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/lk2023060901/text-chunker/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// SemanticChunkerConfig 语义分块器配置
type SemanticChunkerConfig struct {
	Threshold *float32 // 为空时使用 DefaultThreshold
	Embedder  embedding.Embedder
	Fallback  EmbeddingFallback // 为空时使用 ZeroVectorFallback
	Pool      *workerpool.Pool  // 为空时按顺序请求向量
	Logger    *logger.Logger
}

// SemanticChunker 相邻句子余弦相似度低于阈值时切分
type SemanticChunker struct {
	threshold float32
	embedder  embedding.Embedder
	fallback  EmbeddingFallback
	pool      *workerpool.Pool
	logger    *logger.Logger
}

// NewSemanticChunker 创建语义分块器
func NewSemanticChunker(cfg *SemanticChunkerConfig) (*SemanticChunker, error) {
	if cfg == nil || cfg.Embedder == nil {
		return nil, apperrors.NewConfigurationError("semantic chunking requires an embedding provider")
	}

	threshold := DefaultThreshold
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}
	if err := validThreshold(threshold); err != nil {
		return nil, err
	}
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = ZeroVectorFallback
	}
	lgr := cfg.Logger
	if lgr == nil {
		lgr = logger.Nop()
	}

	return &SemanticChunker{
		threshold: threshold,
		embedder:  cfg.Embedder,
		fallback:  fallback,
		pool:      cfg.Pool,
		logger:    lgr,
	}, nil
}

// sentenceUnit 修剪后的句子及其码点区间
type sentenceUnit struct {
	content string
	start   int
	end     int
}

func sentenceUnits(text string) []sentenceUnit {
	idx := newTextIndex(text)
	spans := sentenceSpans(text)
	units := make([]sentenceUnit, 0, len(spans))
	for _, s := range spans {
		content, start, end := idx.trimmedSpan(s.start, s.end)
		if content == "" {
			continue
		}
		units = append(units, sentenceUnit{content: content, start: start, end: end})
	}
	return units
}

// Chunk 实现 Chunker 接口
func (c *SemanticChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	units := sentenceUnits(text)
	if len(units) == 0 {
		return []*Chunk{}, nil
	}

	embeddings, err := c.embed(ctx, units)
	if err != nil {
		return nil, err
	}

	chunks := make([]*Chunk, 0, len(units)/2+1)
	emit := func(group []sentenceUnit, similarity *float32, vec []float32) {
		parts := make([]string, len(group))
		for i, u := range group {
			parts[i] = u.content
		}
		content := strings.Join(parts, " ")
		chunks = append(chunks, &Chunk{
			Content:    content,
			Start:      group[0].start,
			End:        group[len(group)-1].end,
			Index:      len(chunks),
			Size:       runeLen(content),
			Strategy:   kbtypes.ChunkStrategySemantic.String(),
			Similarity: similarity,
			Embedding:  vec,
		})
	}

	groupStart := 0
	for i := 1; i < len(units); i++ {
		sim := CosineSimilarity(embeddings[i-1], embeddings[i])
		if sim < c.threshold {
			// 块上的向量取自触发切分前的最后一个句子
			emit(units[groupStart:i], &sim, embeddings[i-1])
			groupStart = i
		}
	}
	emit(units[groupStart:], nil, embeddings[len(units)-1])

	return chunks, nil
}

// embed 按句子顺序获取向量，配置了 Pool 时并发请求
func (c *SemanticChunker) embed(ctx context.Context, units []sentenceUnit) ([][]float32, error) {
	vecs := make([][]float32, len(units))
	errs := make([]error, len(units))

	if c.pool != nil {
		vecs, errs = workerpool.Map(ctx, c.pool, len(units), func(ctx context.Context, i int) ([]float32, error) {
			return c.embedder.Embed(ctx, units[i].content)
		})
	} else {
		for i, u := range units {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			vecs[i], errs[i] = c.embedder.Embed(ctx, u.content)
		}
	}

	failed := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		vec, ferr := c.fallback.OnEmbedError(ctx, c.embedder.Dimension(), err)
		if ferr != nil {
			if canceled(ctx, ferr) {
				return nil, ferr
			}
			return nil, apperrors.FromProvider(ferr)
		}
		vecs[i] = vec
		failed++
		if failed == 1 {
			c.logger.WithContext(ctx).Warn("embedding failed, applying fallback",
				zap.Int("sentence", i),
				zap.Error(err),
			)
		}
	}
	if failed > 1 {
		c.logger.WithContext(ctx).Warn("embedding fallback applied",
			zap.Int("failed", failed),
			zap.Int("sentences", len(units)),
		)
	}

	return vecs, nil
}

// CosineSimilarity 余弦相似度，长度不一致或存在零向量时为 0
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
