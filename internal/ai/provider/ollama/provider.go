package ollama

import (
	"context"
	"strings"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultBaseURL 本地 Ollama 默认地址
const DefaultBaseURL = "http://localhost:11434"

// Provider Ollama /api/generate 实现
type Provider struct {
	config *types.Config
	client *httpx.Client
	logger *logger.Logger
}

// New 创建 Ollama Provider
func New(config *types.Config, lgr *logger.Logger) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if lgr == nil {
		lgr = logger.L()
	}

	return &Provider{
		config: config,
		client: httpx.New(httpx.Config{
			Timeout:           config.Timeout,
			MaxRetries:        config.MaxRetries,
			RequestsPerSecond: config.RequestsPerSecond,
		}, lgr),
		logger: lgr.Named("ollama"),
	}, nil
}

// Name 返回 Provider 名称
func (p *Provider) Name() string {
	return "ollama"
}

// Generate 调用 /api/generate，stream 固定为 false
func (p *Provider) Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	req.Stream = false
	if req.Model == "" {
		req.Model = p.config.Model
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/api/generate"
	body, err := p.client.PostJSON(ctx, url, p.config.Headers, req)
	if err != nil {
		p.logger.Error("generate request failed",
			zap.String("model", req.Model),
			zap.Error(err))
		return nil, types.NewUnavailableError(p.Name(), "generate request failed", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, types.NewMalformedError(p.Name(), "response is not valid JSON", nil)
	}
	result := gjson.GetBytes(body, "response")
	if !result.Exists() || result.Type != gjson.String {
		return nil, types.NewMalformedError(p.Name(), "missing response field", nil)
	}

	p.logger.Debug("generate completed",
		zap.String("model", req.Model),
		zap.Int("response_length", len(result.Str)))

	return &types.GenerateResponse{
		Model:    gjson.GetBytes(body, "model").String(),
		Response: result.Str,
		Done:     gjson.GetBytes(body, "done").Bool(),
	}, nil
}

// Close 关闭 Provider
func (p *Provider) Close() error {
	return nil
}
