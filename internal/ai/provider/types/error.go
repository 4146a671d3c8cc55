package types

import (
	"context"
	"errors"
	"fmt"

	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
)

// ErrorType Provider 错误类型
type ErrorType string

const (
	// ErrorTypeUnavailable 网络错误、超时、非 2xx 响应
	ErrorTypeUnavailable ErrorType = "unavailable"
	// ErrorTypeMalformedResponse 响应缺少必需字段或无法解析
	ErrorTypeMalformedResponse ErrorType = "malformed_response"
)

// ProviderError Provider 错误
type ProviderError struct {
	Type       ErrorType // 错误类型
	Provider   string    // Provider 名称
	StatusCode int       // HTTP 状态码
	Message    string    // 错误消息
	Err        error     // 原始错误
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("[%s][%s][%d] %s: %v", e.Provider, e.Type, e.StatusCode, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s][%s][%d] %s", e.Provider, e.Type, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Provider, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Provider, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// FailureType 返回错误类型字符串，供错误码映射使用
func (e *ProviderError) FailureType() string {
	return string(e.Type)
}

// IsMalformed 判断是否为响应格式错误
func (e *ProviderError) IsMalformed() bool {
	return e.Type == ErrorTypeMalformedResponse
}

// NewUnavailableError 创建服务不可用错误
func NewUnavailableError(provider, message string, err error) *ProviderError {
	pe := &ProviderError{
		Type:     ErrorTypeUnavailable,
		Provider: provider,
		Message:  message,
		Err:      err,
	}
	var statusErr *httpx.StatusError
	if errors.As(err, &statusErr) {
		pe.StatusCode = statusErr.StatusCode
	}
	return pe
}

// NewMalformedError 创建响应格式错误
func NewMalformedError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Type:     ErrorTypeMalformedResponse,
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}

// IsCanceled 判断错误是否由 context 取消或超时引起
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// AsProviderError 提取 ProviderError
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
