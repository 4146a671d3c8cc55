package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 响应体最大读取长度
const maxBodySize = 32 << 20

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable 5xx 与 429 可重试
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type retryable interface {
	Retryable() bool
}

// Config HTTP 客户端配置
type Config struct {
	Timeout           time.Duration
	MaxRetries        int
	InitialInterval   time.Duration
	MaxInterval       time.Duration
	RequestsPerSecond float64 // <= 0 表示不限速
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Timeout:         60 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// Client 带重试与限速的 HTTP 客户端
type Client struct {
	http    *http.Client
	config  Config
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewHTTPClient 创建标准 HTTP 客户端
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// New 创建客户端
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultConfig().InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultConfig().MaxInterval
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if log == nil {
		log = logger.L()
	}

	c := &Client{
		http:   NewHTTPClient(cfg.Timeout),
		config: cfg,
		logger: log.Named("httpx"),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// PostJSON 发送 JSON 请求并返回 2xx 响应体
// 网络错误、5xx、429 按指数退避重试，其他 4xx 立即返回
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var respBody []byte
	err = c.Retry(ctx, url, func(ctx context.Context) error {
		data, _, err := c.do(ctx, http.MethodPost, url, headers, body)
		if err != nil {
			return err
		}
		respBody = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return respBody, nil
}

// Get 发送 GET 请求，返回 2xx 响应体及其 Content-Type
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, string, error) {
	var (
		respBody    []byte
		contentType string
	)
	err := c.Retry(ctx, url, func(ctx context.Context) error {
		data, header, err := c.do(ctx, http.MethodGet, url, headers, nil)
		if err != nil {
			return err
		}
		respBody = data
		contentType = header.Get("Content-Type")
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return respBody, contentType, nil
}

// Retry 在限速与指数退避下执行 op
// 实现 Retryable() bool 的错误按其返回值决定是否重试，其他错误视为网络错误可重试
func (c *Client) Retry(ctx context.Context, target string, op func(ctx context.Context) error) error {
	attempt := 0

	operation := func() error {
		attempt++

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(ctx, err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("retryable http error",
			zap.String("target", target),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialInterval
	b.MaxInterval = c.config.MaxInterval
	b.MaxElapsedTime = 0

	// #nosec G115 -- MaxRetries is clamped to >= 0 in New
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.config.MaxRetries)), ctx)
	return backoff.Retry(operation, policy)
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, http.Header, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, resp.Header, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}
