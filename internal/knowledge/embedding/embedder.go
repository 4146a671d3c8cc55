package embedding

import (
	"context"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
)

// DefaultDimension 未配置时的向量维度（nomic-embed-text）
const DefaultDimension = 768

// DefaultModel 默认 Embedding 模型
const DefaultModel = "nomic-embed-text"

// Embedder 文本向量化接口
type Embedder interface {
	// Embed 对单个文本生成向量
	Embed(ctx context.Context, text string) ([]float32, error)

	// BatchEmbed 批量生成向量，结果与输入一一对应
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension 返回向量维度
	Dimension() int

	// Provider 返回 Provider 名称
	Provider() kbtypes.EmbeddingProvider

	// Model 返回模型名称
	Model() string
}
