package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 对 zap.Logger 的封装
type Logger struct {
	*zap.Logger
	config *Config
}

// New 根据配置创建 Logger
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger configuration: %w", err)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	core := zapcore.NewCore(
		newEncoder(cfg.Format),
		zapcore.NewMultiWriteSyncer(writeSyncers(cfg)...),
		level,
	)

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return &Logger{
		Logger: zap.New(core, opts...),
		config: cfg,
	}, nil
}

// Nop 返回不输出任何内容的 Logger，主要用于测试
func Nop() *Logger {
	return &Logger{
		Logger: zap.NewNop(),
		config: DefaultConfig(),
	}
}

// newEncoder 根据格式创建编码器
func newEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if format == FormatJSON {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// writeSyncers 根据输出配置创建写入目标
// stdout 用于输出分块结果，控制台日志统一写 stderr
func writeSyncers(cfg *Config) []zapcore.WriteSyncer {
	var writers []zapcore.WriteSyncer

	switch cfg.Output {
	case OutputConsole:
		writers = append(writers, zapcore.Lock(os.Stderr))
	case OutputFile:
		writers = append(writers, zapcore.AddSync(fileWriter(&cfg.File)))
	case OutputBoth:
		writers = append(writers, zapcore.Lock(os.Stderr))
		writers = append(writers, zapcore.AddSync(fileWriter(&cfg.File)))
	}

	return writers
}

// fileWriter 创建带轮转的文件写入器
func fileWriter(cfg *FileConfig) io.Writer {
	dir := filepath.Dir(cfg.Filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

// With 创建带附加字段的子 Logger
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		Logger: l.Logger.With(fields...),
		config: l.config,
	}
}

// Named 创建带名称的子 Logger
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		Logger: l.Logger.Named(name),
		config: l.config,
	}
}

// Config 返回 Logger 配置
func (l *Logger) Config() *Config {
	return l.config
}

var globalLogger *Logger

// InitGlobal 初始化全局 Logger
func InitGlobal(cfg *Config) error {
	lgr, err := New(cfg)
	if err != nil {
		return err
	}
	globalLogger = lgr
	return nil
}

// L 返回全局 Logger，未初始化时使用默认配置
func L() *Logger {
	if globalLogger == nil {
		lgr, _ := New(DefaultConfig())
		globalLogger = lgr
	}
	return globalLogger
}

// Sync 刷新全局 Logger 缓冲
func Sync() error {
	return L().Sync()
}
