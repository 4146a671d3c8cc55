package loader

import (
	"context"
	"io"
)

// Format 文档格式
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Loader 文档加载器接口
type Loader interface {
	// Load 读取文档并转换为待分块的文本
	Load(ctx context.Context, reader io.Reader) (*Document, error)

	// SupportedFormats 返回支持的文档格式
	SupportedFormats() []Format
}

// Document 加载后的文档
type Document struct {
	Content  string         // 文档文本内容
	Metadata map[string]any // 文档元数据
}
