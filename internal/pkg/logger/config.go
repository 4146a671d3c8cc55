package logger

import (
	"errors"
	"strings"
)

// 输出格式
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// 输出目标
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"
)

// Config Logger 配置
type Config struct {
	Level            string     `mapstructure:"level"`  // debug, info, warn, error
	Format           string     `mapstructure:"format"` // json, console
	Output           string     `mapstructure:"output"` // console, file, both
	File             FileConfig `mapstructure:"file"`
	EnableCaller     bool       `mapstructure:"enablecaller"`
	EnableStacktrace bool       `mapstructure:"enablestacktrace"`
}

// FileConfig 文件输出配置
type FileConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"` // MB
	MaxAge     int    `mapstructure:"maxage"`  // 天
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig 默认配置：控制台输出，warn 级别，避免干扰 CLI 结果
func DefaultConfig() *Config {
	return &Config{
		Level:            "warn",
		Format:           FormatConsole,
		Output:           OutputConsole,
		EnableCaller:     false,
		EnableStacktrace: true,
		File: FileConfig{
			Filename:   "logs/chunk.log",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 10,
			Compress:   true,
		},
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error", "dpanic", "panic", "fatal":
	default:
		return errors.New("invalid log level, must be one of: debug, info, warn, error, dpanic, panic, fatal")
	}

	if c.Format != FormatJSON && c.Format != FormatConsole {
		return errors.New("invalid log format, must be 'json' or 'console'")
	}

	if c.Output != OutputConsole && c.Output != OutputFile && c.Output != OutputBoth {
		return errors.New("invalid log output, must be 'console', 'file' or 'both'")
	}

	if c.Output == OutputFile || c.Output == OutputBoth {
		if c.File.Filename == "" {
			return errors.New("log file filename is required when output is 'file' or 'both'")
		}
		if c.File.MaxSize <= 0 {
			return errors.New("log file maxsize must be greater than 0")
		}
		if c.File.MaxAge <= 0 {
			return errors.New("log file maxage must be greater than 0")
		}
		if c.File.MaxBackups < 0 {
			return errors.New("log file maxbackups must be greater than or equal to 0")
		}
	}

	return nil
}
