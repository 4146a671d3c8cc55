package types

import "context"

// Provider 文本生成 Provider 接口
type Provider interface {
	// Generate 单次非流式生成
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Name 返回 Provider 名称
	Name() string

	// Close 关闭 Provider，释放资源
	Close() error
}
