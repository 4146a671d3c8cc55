package errors

import (
	"errors"
	"fmt"
)

// AppError 结构化错误
type AppError struct {
	Code    int    // 错误码
	Message string // 错误消息
	Err     error  // 底层错误
	Details string // 附加信息
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		if e.Details != "" {
			return fmt.Sprintf("[%d] %s: %s: %v", e.Code, e.Message, e.Details, e.Err)
		}
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Is 和 errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建指定错误码的 AppError
func New(code int, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Details: detail,
	}
}

// Newf 创建带格式化信息的 AppError
func Newf(code int, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 用错误码包装已有错误
func Wrap(err error, code int, details ...string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if len(details) > 0 && details[0] != "" {
			return &AppError{
				Code:    appErr.Code,
				Message: appErr.Message,
				Err:     err,
				Details: details[0],
			}
		}
		return appErr
	}

	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}

	return &AppError{
		Code:    code,
		Message: GetMessage(code),
		Err:     err,
		Details: detail,
	}
}

// Wrapf 用格式化信息包装错误
func Wrapf(err error, code int, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is 判断 err 链中是否包含指定错误码的 AppError
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ExtractCode 提取错误码
func ExtractCode(err error) int {
	if err == nil {
		return Success
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// GetDetails 提取错误详情
func GetDetails(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Details != "" {
			return appErr.Details
		}
		if appErr.Err != nil {
			return appErr.Err.Error()
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// providerFailure 由外部服务错误类型实现
type providerFailure interface {
	error
	FailureType() string
}

// FromProvider 将外部服务错误映射为 AppError
// 无法识别的错误视为服务不可用
func FromProvider(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var pf providerFailure
	if errors.As(err, &pf) && pf.FailureType() == "malformed_response" {
		return Wrap(err, ErrMalformedResponse)
	}
	return Wrap(err, ErrProviderUnavailable)
}

// NewInvalidParams 参数错误
func NewInvalidParams(details ...string) *AppError {
	return New(ErrInvalidParams, details...)
}

// NewConfigurationError 配置错误
func NewConfigurationError(details ...string) *AppError {
	return New(ErrConfiguration, details...)
}

// NewUnknownStrategy 未知策略
func NewUnknownStrategy(strategy string) *AppError {
	return New(ErrUnknownStrategy, strategy)
}

// NewPatternError 正则编译失败
func NewPatternError(err error, pattern string) *AppError {
	return Wrap(err, ErrPatternInvalid, pattern)
}

// NewInternalError 内部错误
func NewInternalError(details ...string) *AppError {
	return New(ErrInternal, details...)
}
