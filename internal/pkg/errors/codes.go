package errors

import "fmt"

// Code 错误码及其默认消息
type Code struct {
	Code    int
	Message string
}

// 错误码
const (
	Success = 0

	// 通用错误 (1000-1999)
	ErrInternal      = 1000
	ErrInvalidParams = 1001
	ErrConfiguration = 1002

	// 分块错误 (2000-2999)
	ErrUnknownStrategy = 2000
	ErrPatternInvalid  = 2001

	// 外部服务错误 (3000-3999)
	ErrProviderUnavailable = 3000
	ErrMalformedResponse   = 3001
)

var codeMap = map[int]Code{
	Success: {Success, "Success"},

	ErrInternal:      {ErrInternal, "Internal error"},
	ErrInvalidParams: {ErrInvalidParams, "Invalid parameters"},
	ErrConfiguration: {ErrConfiguration, "Configuration error"},

	ErrUnknownStrategy: {ErrUnknownStrategy, "Unknown chunking strategy"},
	ErrPatternInvalid:  {ErrPatternInvalid, "Invalid pattern"},

	ErrProviderUnavailable: {ErrProviderUnavailable, "Provider unavailable"},
	ErrMalformedResponse:   {ErrMalformedResponse, "Malformed provider response"},
}

// GetCode 返回错误码详情，未知错误码按内部错误处理
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternal]
}

// GetMessage 返回错误码对应的消息
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsSuccess 判断是否成功
func IsSuccess(code int) bool {
	return code == Success
}

// IsProviderError 判断错误码是否属于外部服务错误
func IsProviderError(code int) bool {
	return code >= 3000 && code < 4000
}

// FormatError 格式化带错误码的消息
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
