package loader

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// TextLoader 纯文本与 Markdown 加载器
// Markdown 保留原始标记，heading/list/table 策略依赖这些结构
type TextLoader struct{}

// NewTextLoader 创建纯文本加载器
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load 读取全部内容，去掉 BOM 并替换非法 UTF-8 序列
func (l *TextLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read text content: %w", err)
	}

	return &Document{
		Content: normalizeText(string(content)),
		Metadata: map[string]any{
			"loader":        "text",
			"original_size": len(content),
		},
	}, nil
}

// SupportedFormats 返回支持的文档格式
func (l *TextLoader) SupportedFormats() []Format {
	return []Format{FormatText, FormatMarkdown}
}

func normalizeText(s string) string {
	s = strings.TrimPrefix(s, utf8BOM)
	return strings.ToValidUTF8(s, "\uFFFD")
}
