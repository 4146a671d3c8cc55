package loader

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// 扩展名到文档格式的映射，未列出的扩展名按纯文本处理
var extensionFormats = map[string]Format{
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".json":     FormatJSON,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".xhtml":    FormatHTML,
}

// Factory Loader 工厂
type Factory struct {
	loaders map[Format]Loader
}

// NewFactory 创建 Loader 工厂
func NewFactory() *Factory {
	factory := &Factory{
		loaders: make(map[Format]Loader),
	}

	factory.registerLoader(NewTextLoader())
	factory.registerLoader(NewJSONLoader())
	factory.registerLoader(NewHTMLLoader())

	return factory
}

// registerLoader 注册 Loader
func (f *Factory) registerLoader(loader Loader) {
	for _, format := range loader.SupportedFormats() {
		f.loaders[format] = loader
	}
}

// CreateLoader 根据文档格式创建 Loader
func (f *Factory) CreateLoader(format Format) (Loader, error) {
	loader, ok := f.loaders[format]
	if !ok {
		return nil, fmt.Errorf("unsupported document format: %s", format)
	}
	return loader, nil
}

// FormatForPath 根据扩展名判断文档格式
func FormatForPath(path string) Format {
	if format, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]; ok {
		return format
	}
	return FormatText
}

// FormatForContentType 根据 Content-Type 判断文档格式
func FormatForContentType(contentType string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FormatText
	}
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return FormatHTML
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return FormatJSON
	case mediaType == "text/markdown":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// LoadFile 按扩展名选择 Loader 读取文件
func (f *Factory) LoadFile(ctx context.Context, path string) (*Document, error) {
	format := FormatForPath(path)
	loader, err := f.CreateLoader(format)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	doc, err := loader.Load(ctx, file)
	if err != nil {
		return nil, err
	}
	doc.Metadata["format"] = string(format)
	doc.Metadata["path"] = path
	return doc, nil
}
