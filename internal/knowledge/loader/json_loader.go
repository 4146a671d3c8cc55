package loader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// JSONLoader JSON 文件加载器
type JSONLoader struct{}

// NewJSONLoader 创建 JSON 加载器
func NewJSONLoader() *JSONLoader {
	return &JSONLoader{}
}

// Load 加载 JSON 内容，按文档中的键顺序展开为缩进文本
func (l *JSONLoader) Load(ctx context.Context, reader io.Reader) (*Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read json content: %w", err)
	}

	raw := strings.TrimPrefix(string(content), utf8BOM)
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("failed to parse json: invalid document")
	}

	var sb strings.Builder
	formatJSON(&sb, gjson.Parse(raw), 0)

	return &Document{
		Content: strings.TrimRight(sb.String(), "\n"),
		Metadata: map[string]any{
			"loader":        "json",
			"original_size": len(content),
		},
	}, nil
}

// SupportedFormats 返回支持的文档格式
func (l *JSONLoader) SupportedFormats() []Format {
	return []Format{FormatJSON}
}

// formatJSON 递归格式化 JSON 数据为可读文本
func formatJSON(sb *strings.Builder, value gjson.Result, indent int) {
	indentStr := strings.Repeat("  ", indent)

	if !value.IsObject() && !value.IsArray() {
		sb.WriteString(indentStr)
		sb.WriteString(value.String())
		sb.WriteString("\n")
		return
	}

	isArray := value.IsArray()
	i := 0
	value.ForEach(func(key, item gjson.Result) bool {
		if isArray {
			fmt.Fprintf(sb, "%s[%d]:", indentStr, i)
		} else {
			fmt.Fprintf(sb, "%s%s:", indentStr, key.String())
		}
		i++

		if item.IsObject() || item.IsArray() {
			sb.WriteString("\n")
			formatJSON(sb, item, indent+1)
			return true
		}
		sb.WriteString(" ")
		sb.WriteString(item.String())
		sb.WriteString("\n")
		return true
	})
}
