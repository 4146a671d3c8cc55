package types

import (
	"errors"
	"time"
)

var (
	ErrMissingAPIKey  = errors.New("API key is required")
	ErrMissingBaseURL = errors.New("base URL is required")
)

// Config Provider 通用配置
type Config struct {
	Provider          string            // ollama, openai
	APIKey            string            // API Key
	BaseURL           string            // API 基础 URL
	Timeout           time.Duration     // 请求超时
	MaxRetries        int               // 可重试错误的最大重试次数
	RequestsPerSecond float64           // 限速，<= 0 不限速
	Model             string            // 默认模型
	Headers           map[string]string // 自定义 HTTP Headers
}

// Validate 验证配置并填充默认超时
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return nil
}

// Clone 复制配置
func (c *Config) Clone() *Config {
	cp := *c
	if c.Headers != nil {
		cp.Headers = make(map[string]string, len(c.Headers))
		for k, v := range c.Headers {
			cp.Headers[k] = v
		}
	}
	return &cp
}
