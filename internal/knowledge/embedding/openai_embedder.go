package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIEmbedder OpenAI 兼容 Embedder 实现
type OpenAIEmbedder struct {
	client    *openai.Client
	retry     *httpx.Client
	model     string
	dimension int
	logger    *logger.Logger
}

// OpenAIEmbedderConfig OpenAI Embedder 配置
type OpenAIEmbedderConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Dimension         int
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// NewOpenAIEmbedder 创建 OpenAI Embedder
func NewOpenAIEmbedder(cfg *OpenAIEmbedderConfig, lgr *logger.Logger) (*OpenAIEmbedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3) // text-embedding-3-small
	}

	if cfg.Dimension == 0 {
		cfg.Dimension = 1536
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	var log *logger.Logger
	if lgr == nil {
		log = logger.L()
	} else {
		log = lgr
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	log.Debug("openai embedder created",
		zap.String("model", cfg.Model),
		zap.Int("dimension", cfg.Dimension))

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		retry: httpx.New(httpx.Config{
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, log),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    log.Named("openai-embedder"),
	}, nil
}

// Embed 对单个文本生成向量
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// BatchEmbed 批量生成向量
func (e *OpenAIEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimension,
	}

	var resp openai.EmbeddingResponse
	err := e.retry.Retry(ctx, "embeddings", func(ctx context.Context) error {
		r, err := e.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return openAIStatusError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		e.logger.Debug("failed to create embeddings",
			zap.Error(err),
			zap.Int("text_count", len(texts)))
		return nil, types.NewUnavailableError(kbtypes.EmbeddingProviderOpenAI.String(), "failed to create embeddings", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, types.NewMalformedError(kbtypes.EmbeddingProviderOpenAI.String(),
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)), nil)
	}

	// 按 index 放回，接口不保证顺序
	embeddings := make([][]float32, len(texts))
	for i, data := range resp.Data {
		idx := data.Index
		if idx < 0 || idx >= len(texts) {
			idx = i
		}
		if len(data.Embedding) == 0 {
			return nil, types.NewMalformedError(kbtypes.EmbeddingProviderOpenAI.String(), "empty embedding", nil)
		}
		embeddings[idx] = data.Embedding
	}
	for _, emb := range embeddings {
		if emb == nil {
			return nil, types.NewMalformedError(kbtypes.EmbeddingProviderOpenAI.String(), "duplicate embedding index", nil)
		}
	}

	e.logger.Debug("embeddings created",
		zap.Int("count", len(embeddings)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return embeddings, nil
}

// Dimension 返回向量维度
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Provider 返回 Provider 名称
func (e *OpenAIEmbedder) Provider() kbtypes.EmbeddingProvider {
	return kbtypes.EmbeddingProviderOpenAI
}

// Model 返回模型名称
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

func openAIStatusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &httpx.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &httpx.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return err
}
