package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lk2023060901/text-chunker/internal/pkg/httpx"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
)

const userAgent = "text-chunker/1.0"

// URLLoader URL 内容加载器，按响应的 Content-Type 选择 Loader
type URLLoader struct {
	client  *httpx.Client
	loaders *Factory
	logger  *logger.Logger
}

// NewURLLoader 创建 URL 加载器
func NewURLLoader(client *httpx.Client, loaders *Factory, lgr *logger.Logger) *URLLoader {
	if lgr == nil {
		lgr = logger.L()
	}
	if loaders == nil {
		loaders = NewFactory()
	}
	return &URLLoader{
		client:  client,
		loaders: loaders,
		logger:  lgr.Named("url-loader"),
	}
}

// LoadURL 下载 URL 内容并转换为文本
func (l *URLLoader) LoadURL(ctx context.Context, url string) (*Document, error) {
	body, contentType, err := l.client.Get(ctx, url, map[string]string{"User-Agent": userAgent})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	format := FormatForContentType(contentType)
	loader, err := l.loaders.CreateLoader(format)
	if err != nil {
		return nil, err
	}

	doc, err := loader.Load(ctx, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	doc.Metadata["format"] = string(format)
	doc.Metadata["url"] = url
	doc.Metadata["content_type"] = contentType

	l.logger.Debug("url loaded",
		zap.String("url", url),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(body)),
	)
	return doc, nil
}
