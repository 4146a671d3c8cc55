package factory

import (
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
)

// BaseFactory 工厂公共部分：名称与 logger
type BaseFactory struct {
	name   string
	logger *logger.Logger
}

// NewBaseFactory 创建基础工厂，lgr 为空时使用全局 logger
func NewBaseFactory(name string, lgr *logger.Logger) *BaseFactory {
	if lgr == nil {
		lgr = logger.L()
	}
	return &BaseFactory{
		name:   name,
		logger: lgr,
	}
}

// Name 工厂名称
func (f *BaseFactory) Name() string {
	return f.name
}

// Logger 获取 logger，传给工厂创建的组件
func (f *BaseFactory) Logger() *logger.Logger {
	return f.logger
}

// LogCreated 记录工厂创建了一个组件
func (f *BaseFactory) LogCreated(component string, fields ...zap.Field) {
	f.logger.Debug(component+" created", append([]zap.Field{zap.String("factory", f.name)}, fields...)...)
}
