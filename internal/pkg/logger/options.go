package logger

// Option 修改 Logger 配置的函数
type Option func(*Config)

func WithLevel(level string) Option {
	return func(c *Config) {
		c.Level = level
	}
}

func WithFormat(format string) Option {
	return func(c *Config) {
		c.Format = format
	}
}

func WithOutput(output string) Option {
	return func(c *Config) {
		c.Output = output
	}
}

// WithFile 设置日志文件路径并启用文件输出
func WithFile(filename string) Option {
	return func(c *Config) {
		c.File.Filename = filename
		if c.Output == OutputConsole {
			c.Output = OutputBoth
		}
	}
}

func WithCaller(enabled bool) Option {
	return func(c *Config) {
		c.EnableCaller = enabled
	}
}

// NewWithOptions 基于默认配置和选项创建 Logger
func NewWithOptions(opts ...Option) (*Logger, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return New(cfg)
}
