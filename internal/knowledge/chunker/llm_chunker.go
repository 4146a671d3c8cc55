package chunker

import (
	"context"
	"regexp"
	"strings"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	"github.com/lk2023060901/text-chunker/internal/knowledge/embedding"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
)

// DefaultChunkPrompt 默认分块指令，正文追加在其后
const DefaultChunkPrompt = `Split the following text into coherent, self-contained chunks for retrieval.
Keep related sentences together and do not rewrite, summarize or omit any text.
Wrap every chunk exactly as <CHUNK_START>chunk text<CHUNK_END> and output nothing else.`

const reasonNoChunkTags = "no chunk tags found - treated as single chunk"

var chunkTagPattern = regexp.MustCompile(`(?s)<CHUNK_START>(.*?)<CHUNK_END>`)

// LLMChunkerConfig LLM 分块器配置
type LLMChunkerConfig struct {
	Provider types.Provider
	Model    string
	Prompt   string             // 为空时使用 DefaultChunkPrompt
	Embedder embedding.Embedder // 可选，为每个块附加向量
	Fallback EmbeddingFallback  // 为空时使用 OmitOnError
	Logger   *logger.Logger

	// CloseProvider 为 true 时每次 Chunk 结束后关闭 Provider
	CloseProvider bool
}

// LLMChunker 由 LLM 在文本中标注块边界
type LLMChunker struct {
	provider types.Provider
	model    string
	prompt   string
	embedder embedding.Embedder
	fallback EmbeddingFallback
	logger   *logger.Logger
	owned    bool
}

// NewLLMChunker 创建 LLM 分块器
func NewLLMChunker(cfg *LLMChunkerConfig) (*LLMChunker, error) {
	if cfg == nil || cfg.Provider == nil {
		return nil, apperrors.NewConfigurationError("llm chunking requires an llm provider")
	}

	prompt := cfg.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultChunkPrompt
	}
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = OmitOnError
	}
	lgr := cfg.Logger
	if lgr == nil {
		lgr = logger.Nop()
	}

	return &LLMChunker{
		provider: cfg.Provider,
		model:    cfg.Model,
		prompt:   prompt,
		embedder: cfg.Embedder,
		fallback: fallback,
		logger:   lgr,
		owned:    cfg.CloseProvider,
	}, nil
}

// Chunk 实现 Chunker 接口
func (c *LLMChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	if c.owned {
		defer func() {
			if err := c.provider.Close(); err != nil {
				c.logger.Warn("failed to close llm provider", zap.Error(err))
			}
		}()
	}
	if isBlank(text) {
		return []*Chunk{}, nil
	}

	resp, err := c.provider.Generate(ctx, types.GenerateRequest{
		Model:  c.model,
		Prompt: c.prompt + "\n\n" + text,
		Stream: false,
	})
	if err != nil {
		if canceled(ctx, err) {
			return nil, err
		}
		c.logger.WithContext(ctx).Error("llm boundary request failed",
			zap.String("provider", c.provider.Name()),
			zap.Error(err),
		)
		return nil, apperrors.FromProvider(err)
	}

	contents, source := extractChunkSpans(resp.Response)
	chunks := locateChunks(text, contents, source)

	if c.embedder != nil {
		if err := c.attachEmbeddings(ctx, chunks); err != nil {
			return nil, err
		}
	}
	return chunks, nil
}

// extractChunkSpans 提取标签内的文本；没有任何标签时整个响应作为一块
func extractChunkSpans(response string) ([]string, string) {
	matches := chunkTagPattern.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		whole := strings.TrimSpace(response)
		if whole == "" {
			return nil, ""
		}
		return []string{whole}, reasonNoChunkTags
	}

	contents := make([]string, 0, len(matches))
	for _, m := range matches {
		if content := strings.TrimSpace(m[1]); content != "" {
			contents = append(contents, content)
		}
	}
	return contents, ""
}

// locateChunks 在原文中顺序查找每个块的位置
// 模型改写了文本而找不到时，从上一块结尾继续计算
func locateChunks(text string, contents []string, source string) []*Chunk {
	idx := newTextIndex(text)
	chunks := make([]*Chunk, 0, len(contents))

	cursor := 0 // 字节
	prevEnd := 0
	for _, content := range contents {
		size := runeLen(content)
		start := prevEnd
		if i := strings.Index(text[cursor:], content); i >= 0 {
			bs := cursor + i
			start = idx.runeOffset(bs)
			cursor = bs + len(content)
		}
		end := start + size
		prevEnd = end

		chunks = append(chunks, &Chunk{
			Content:  content,
			Start:    start,
			End:      end,
			Index:    len(chunks),
			Size:     size,
			Strategy: kbtypes.ChunkStrategyLLM.String(),
			Source:   source,
		})
	}
	return chunks
}

// attachEmbeddings 为每个块附加向量，失败按 fallback 处理
func (c *LLMChunker) attachEmbeddings(ctx context.Context, chunks []*Chunk) error {
	for _, chunk := range chunks {
		vec, err := c.embedder.Embed(ctx, chunk.Content)
		if err == nil {
			chunk.Embedding = vec
			continue
		}

		vec, ferr := c.fallback.OnEmbedError(ctx, c.embedder.Dimension(), err)
		if ferr != nil {
			if canceled(ctx, ferr) {
				return ferr
			}
			return apperrors.FromProvider(ferr)
		}
		chunk.Embedding = vec
		c.logger.WithContext(ctx).Warn("chunk embedding failed, continuing without it",
			zap.Int("chunk", chunk.Index),
			zap.Error(err),
		)
	}
	return nil
}
