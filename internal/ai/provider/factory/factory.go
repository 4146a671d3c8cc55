package factory

import (
	"fmt"

	"github.com/lk2023060901/text-chunker/internal/ai/provider/ollama"
	"github.com/lk2023060901/text-chunker/internal/ai/provider/openai"
	"github.com/lk2023060901/text-chunker/internal/ai/provider/types"
	pkgfactory "github.com/lk2023060901/text-chunker/internal/pkg/factory"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Factory LLM Provider 工厂
type Factory struct {
	*pkgfactory.BaseFactory
	base *types.Config
}

// NewFactory 创建工厂，base 为默认配置
func NewFactory(base *types.Config, lgr *logger.Logger) *Factory {
	if base == nil {
		base = NewConfig(ProviderOllama).Build()
	}
	return &Factory{
		BaseFactory: pkgfactory.NewBaseFactory("llm-provider", lgr),
		base:        base,
	}
}

// Default 使用默认配置创建 Provider
func (f *Factory) Default() (types.Provider, error) {
	p, err := Create(f.base.Clone(), f.Logger())
	if err != nil {
		return nil, err
	}
	f.LogCreated("llm provider", zap.String("provider", p.Name()))
	return p, nil
}

// WithBaseURL 使用指定地址创建新的 Provider，其余配置沿用默认配置
func (f *Factory) WithBaseURL(baseURL string) (types.Provider, error) {
	cfg := f.base.Clone()
	cfg.BaseURL = baseURL
	f.Logger().Debug("creating llm provider with endpoint override",
		zap.String("provider", cfg.Provider),
		zap.String("base_url", baseURL))
	return Create(cfg, f.Logger())
}

// Create 根据配置创建 Provider
func Create(cfg *types.Config, lgr *logger.Logger) (types.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	switch cfg.Provider {
	case ProviderOllama, "":
		return ollama.New(cfg, lgr)
	case ProviderOpenAI:
		return openai.New(cfg, lgr)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
