package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultOllamaURL 本地 Ollama 默认地址
const DefaultOllamaURL = "http://localhost:11434"

// OllamaEmbedder Ollama /api/embeddings 实现
type OllamaEmbedder struct {
	client    *httpx.Client
	baseURL   string
	model     string
	dimension int
	logger    *logger.Logger
}

// OllamaEmbedderConfig Ollama Embedder 配置
type OllamaEmbedderConfig struct {
	BaseURL           string
	Model             string
	Dimension         int
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// NewOllamaEmbedder 创建 Ollama Embedder
func NewOllamaEmbedder(cfg *OllamaEmbedderConfig, lgr *logger.Logger) (*OllamaEmbedder, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultDimension
	}
	if lgr == nil {
		lgr = logger.L()
	}

	return &OllamaEmbedder{
		client: httpx.New(httpx.Config{
			Timeout:           cfg.Timeout,
			MaxRetries:        cfg.MaxRetries,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, lgr),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		dimension: cfg.Dimension,
		logger:    lgr.Named("ollama-embedder"),
	}, nil
}

// Embed 对单个文本生成向量
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := e.client.PostJSON(ctx, e.baseURL+"/api/embeddings", nil, ollamaEmbedRequest{
		Model:  e.model,
		Prompt: text,
	})
	if err != nil {
		e.logger.Debug("embedding request failed",
			zap.String("model", e.model),
			zap.Error(err))
		return nil, types.NewUnavailableError(kbtypes.EmbeddingProviderOllama.String(), "embedding request failed", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, types.NewMalformedError(kbtypes.EmbeddingProviderOllama.String(), "response is not valid JSON", nil)
	}
	field := gjson.GetBytes(body, "embedding")
	if !field.IsArray() {
		return nil, types.NewMalformedError(kbtypes.EmbeddingProviderOllama.String(), "missing embedding field", nil)
	}

	values := field.Array()
	vec := make([]float32, 0, len(values))
	for _, v := range values {
		if v.Type != gjson.Number {
			return nil, types.NewMalformedError(kbtypes.EmbeddingProviderOllama.String(), "embedding contains non-numeric value", nil)
		}
		vec = append(vec, float32(v.Num))
	}
	if len(vec) == 0 {
		return nil, types.NewMalformedError(kbtypes.EmbeddingProviderOllama.String(), "empty embedding", nil)
	}

	return vec, nil
}

// BatchEmbed 逐条调用 /api/embeddings
func (e *OllamaEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimension 返回向量维度
func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

// Provider 返回 Provider 名称
func (e *OllamaEmbedder) Provider() kbtypes.EmbeddingProvider {
	return kbtypes.EmbeddingProviderOllama
}

// Model 返回模型名称
func (e *OllamaEmbedder) Model() string {
	return e.model
}
