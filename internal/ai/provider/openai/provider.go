package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultBaseURL OpenAI 官方地址
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider OpenAI 兼容 Chat Completion 实现
type Provider struct {
	config *types.Config
	client *goopenai.Client
	retry  *httpx.Client
	logger *logger.Logger
}

// New 创建 OpenAI Provider
func New(config *types.Config, lgr *logger.Logger) (*Provider, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.APIKey == "" && config.BaseURL == DefaultBaseURL {
		return nil, types.ErrMissingAPIKey
	}
	if lgr == nil {
		lgr = logger.L()
	}

	clientCfg := goopenai.DefaultConfig(config.APIKey)
	clientCfg.BaseURL = config.BaseURL
	clientCfg.HTTPClient = &http.Client{
		Timeout:   config.Timeout,
		Transport: headerTransport{headers: config.Headers},
	}

	return &Provider{
		config: config,
		client: goopenai.NewClientWithConfig(clientCfg),
		retry: httpx.New(httpx.Config{
			Timeout:           config.Timeout,
			MaxRetries:        config.MaxRetries,
			RequestsPerSecond: config.RequestsPerSecond,
		}, lgr),
		logger: lgr.Named("openai"),
	}, nil
}

// Name 返回 Provider 名称
func (p *Provider) Name() string {
	return "openai"
}

// Generate 以单条 user 消息发起非流式 Chat Completion
func (p *Provider) Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	if req.Model == "" {
		req.Model = p.config.Model
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Stream: false,
	}

	var resp goopenai.ChatCompletionResponse
	err := p.retry.Retry(ctx, p.config.BaseURL, func(ctx context.Context) error {
		r, err := p.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return toStatusError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		p.logger.Error("chat completion failed",
			zap.String("model", req.Model),
			zap.Error(err))
		return nil, types.NewUnavailableError(p.Name(), "chat completion failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, types.NewMalformedError(p.Name(), "no choices in response", nil)
	}

	return &types.GenerateResponse{
		Model:    resp.Model,
		Response: resp.Choices[0].Message.Content,
		Done:     true,
	}, nil
}

// Close 关闭 Provider
func (p *Provider) Close() error {
	return nil
}

// toStatusError 将 go-openai 的 HTTP 错误转换为可判定重试的 StatusError
func toStatusError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &httpx.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &httpx.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return err
}

// headerTransport 为每个请求附加自定义 Header
type headerTransport struct {
	headers map[string]string
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) > 0 {
		req = req.Clone(req.Context())
		for k, v := range t.headers {
			req.Header.Set(k, v)
		}
	}
	return http.DefaultTransport.RoundTrip(req)
}
