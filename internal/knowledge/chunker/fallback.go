package chunker

import (
	"context"
	"errors"
)

// EmbeddingFallback 向量化失败时的处理策略
// 返回 (nil, nil) 表示该文本不带向量；返回错误则终止本次分块
type EmbeddingFallback interface {
	OnEmbedError(ctx context.Context, dim int, err error) ([]float32, error)
}

// EmbeddingFallbackFunc 函数形式的 EmbeddingFallback
type EmbeddingFallbackFunc func(ctx context.Context, dim int, err error) ([]float32, error)

func (f EmbeddingFallbackFunc) OnEmbedError(ctx context.Context, dim int, err error) ([]float32, error) {
	return f(ctx, dim, err)
}

// canceled 调用方取消或超时，任何策略都不吞掉
func canceled(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ZeroVectorFallback 以零向量代替
var ZeroVectorFallback EmbeddingFallback = EmbeddingFallbackFunc(
	func(ctx context.Context, dim int, err error) ([]float32, error) {
		if canceled(ctx, err) {
			return nil, err
		}
		return make([]float32, dim), nil
	})

// OmitOnError 不附带向量
var OmitOnError EmbeddingFallback = EmbeddingFallbackFunc(
	func(ctx context.Context, _ int, err error) ([]float32, error) {
		if canceled(ctx, err) {
			return nil, err
		}
		return nil, nil
	})

// PropagateError 直接返回错误
var PropagateError EmbeddingFallback = EmbeddingFallbackFunc(
	func(_ context.Context, _ int, err error) ([]float32, error) {
		return nil, err
	})
