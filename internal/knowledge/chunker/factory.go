package chunker

import (
	"context"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	"github.com/lk2023060901/text-chunker/internal/knowledge/embedding"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/lk2023060901/text-chunker/internal/pkg/workerpool"
	"go.uber.org/zap"
)

// EmbedderSource 按模型名提供 Embedder
type EmbedderSource interface {
	ForModel(model string) (embedding.Embedder, error)
}

// LLMSource 提供 LLM Provider，WithBaseURL 每次返回新的实例
type LLMSource interface {
	Default() (types.Provider, error)
	WithBaseURL(baseURL string) (types.Provider, error)
}

// Factory Chunker 工厂
type Factory struct {
	embedders EmbedderSource
	llms      LLMSource
	pool      *workerpool.Pool
	fallback  EmbeddingFallback
	prompt    string
	logger    *logger.Logger
}

// NewFactory 创建 Chunker 工厂，外部服务均为可选
func NewFactory(embedders EmbedderSource, llms LLMSource, lgr *logger.Logger) *Factory {
	if lgr == nil {
		lgr = logger.Nop()
	}
	return &Factory{
		embedders: embedders,
		llms:      llms,
		fallback:  ZeroVectorFallback,
		logger:    lgr,
	}
}

// CreateChunker 根据 Plan 创建对应的 Chunker
func (f *Factory) CreateChunker(ctx context.Context, plan Plan) (Chunker, error) {
	switch p := plan.(type) {
	case FixedPlan:
		return NewFixedChunker(p), nil
	case SentencePlan:
		return NewSentenceChunker(p), nil
	case ParagraphPlan:
		return NewParagraphChunker(p), nil
	case CodePlan:
		return NewCodeChunker(p), nil
	case HeadingPlan:
		return NewHeadingChunker(p), nil
	case DialoguePlan:
		c := NewDialogueChunker(p)
		if err := c.Err(); err != nil {
			f.logger.WithContext(ctx).Warn("invalid speaker pattern, degrading to single chunk", zap.Error(err))
		}
		return c, nil
	case ListPlan:
		return NewListChunker(p), nil
	case TablePlan:
		return NewTableChunker(p), nil
	case TokenPlan:
		return NewTokenChunker(p)
	case RecursivePlan:
		return NewRecursiveChunker(p, f.logger), nil
	case SemanticPlan:
		return f.createSemantic(p.Model, p.Threshold)
	case SmartPlan:
		semantic, err := f.createSemantic(p.Model, p.Threshold)
		if err != nil {
			f.logger.WithContext(ctx).Warn("semantic chunker unavailable for smart chunking", zap.Error(err))
			return NewSmartChunker(p, nil, f.logger), nil
		}
		return NewSmartChunker(p, semantic, f.logger), nil
	case LLMPlan:
		return f.createLLM(ctx, p)
	default:
		return nil, apperrors.NewUnknownStrategy("unsupported plan")
	}
}

func (f *Factory) embedder(model string) (embedding.Embedder, error) {
	if f.embedders == nil {
		return nil, apperrors.NewConfigurationError("no embedding provider configured")
	}
	emb, err := f.embedders.ForModel(model)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfiguration, "embedding provider")
	}
	return emb, nil
}

func (f *Factory) createSemantic(model string, threshold float32) (*SemanticChunker, error) {
	emb, err := f.embedder(model)
	if err != nil {
		return nil, err
	}
	return NewSemanticChunker(&SemanticChunkerConfig{
		Threshold: &threshold,
		Embedder:  emb,
		Fallback:  f.fallback,
		Pool:      f.pool,
		Logger:    f.logger,
	})
}

func (f *Factory) createLLM(ctx context.Context, p LLMPlan) (*LLMChunker, error) {
	if f.llms == nil {
		return nil, apperrors.NewConfigurationError("no llm provider configured")
	}

	var (
		provider types.Provider
		err      error
	)
	if p.LLMURL != "" {
		provider, err = f.llms.WithBaseURL(p.LLMURL)
	} else {
		provider, err = f.llms.Default()
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrConfiguration, "llm provider")
	}

	// 向量为可选项，不可用时块不带向量
	emb, err := f.embedder(p.EmbedModel)
	if err != nil {
		f.logger.WithContext(ctx).Warn("embedding provider unavailable, llm chunks will carry no embeddings", zap.Error(err))
		emb = nil
	}

	prompt := p.Prompt
	if prompt == "" {
		prompt = f.prompt
	}

	return NewLLMChunker(&LLMChunkerConfig{
		Provider:      provider,
		Model:         p.LLMModel,
		Prompt:        prompt,
		Embedder:      emb,
		Fallback:      OmitOnError,
		Logger:        f.logger,
		CloseProvider: p.LLMURL != "",
	})
}
