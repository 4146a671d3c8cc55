package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"github.com/lk2023060901/text-chunker/internal/pkg/redis"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 CHUNK_EMBEDDING_BASE_URL
const EnvPrefix = "CHUNK"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Chunk     ChunkConfig     `mapstructure:"chunk"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// ChunkConfig 分块参数默认值
type ChunkConfig struct {
	Strategy       string  `mapstructure:"strategy"`
	Size           int     `mapstructure:"size"`
	Overlap        int     `mapstructure:"overlap"`
	Threshold      float64 `mapstructure:"threshold"`
	Model          string  `mapstructure:"model"`
	HeadingLevels  string  `mapstructure:"heading_levels"`
	SpeakerPattern string  `mapstructure:"speaker_pattern"`
	TokenLimit     int     `mapstructure:"token_limit"`
	Tokenizer      string  `mapstructure:"tokenizer"`
	MaxChunkSize   int     `mapstructure:"max_chunk_size"`
	MinChunkSize   int     `mapstructure:"min_chunk_size"`
}

type EmbeddingConfig struct {
	Provider          string        `mapstructure:"provider"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Dimension         int           `mapstructure:"dimension"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	Concurrency       int           `mapstructure:"concurrency"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Cache             CacheConfig   `mapstructure:"cache"`
}

type CacheConfig struct {
	Type   string        `mapstructure:"type"` // none, memory, redis
	Size   int           `mapstructure:"size"`
	TTL    time.Duration `mapstructure:"ttl"`
	Prefix string        `mapstructure:"prefix"`
}

type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Prompt            string        `mapstructure:"prompt"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", logger.FormatConsole)
	v.SetDefault("log.output", logger.OutputConsole)
	v.SetDefault("log.enablestacktrace", true)
	v.SetDefault("log.file.filename", "logs/chunk.log")
	v.SetDefault("log.file.maxsize", 100)
	v.SetDefault("log.file.maxage", 30)
	v.SetDefault("log.file.maxbackups", 10)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("chunk.strategy", "fixed")
	v.SetDefault("chunk.size", 500)
	v.SetDefault("chunk.overlap", 50)
	v.SetDefault("chunk.threshold", 0.8)
	v.SetDefault("chunk.model", "nomic-embed-text")
	v.SetDefault("chunk.heading_levels", "1,2,3")
	v.SetDefault("chunk.speaker_pattern", "")
	v.SetDefault("chunk.token_limit", 512)
	v.SetDefault("chunk.tokenizer", "word")
	v.SetDefault("chunk.max_chunk_size", 1000)
	v.SetDefault("chunk.min_chunk_size", 100)

	v.SetDefault("embedding.provider", "ollama")
	v.SetDefault("embedding.base_url", "http://localhost:11434")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("embedding.dimension", 768)
	v.SetDefault("embedding.timeout", 60*time.Second)
	v.SetDefault("embedding.max_retries", 3)
	v.SetDefault("embedding.concurrency", 1)
	v.SetDefault("embedding.requests_per_second", 0)
	v.SetDefault("embedding.cache.type", "none")
	v.SetDefault("embedding.cache.size", 10000)
	v.SetDefault("embedding.cache.ttl", 24*time.Hour)
	v.SetDefault("embedding.cache.prefix", "chunk:embedding:")

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.base_url", "http://localhost:11434")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama3.2")
	v.SetDefault("llm.timeout", 300*time.Second)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.requests_per_second", 0)
	v.SetDefault("llm.prompt", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// LoadConfig 加载配置：默认值 < 配置文件 < 环境变量
// path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// LoggerConfig 转换为 logger 配置
func (c *LogConfig) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:            c.Level,
		Format:           c.Format,
		Output:           c.Output,
		EnableCaller:     c.EnableCaller,
		EnableStacktrace: c.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   c.File.Filename,
			MaxSize:    c.File.MaxSize,
			MaxAge:     c.File.MaxAge,
			MaxBackups: c.File.MaxBackups,
			Compress:   c.File.Compress,
		},
	}
}

// RedisClientConfig 转换为 redis 客户端配置
func (c *RedisConfig) RedisClientConfig() *redis.Config {
	cfg := redis.DefaultConfig()
	cfg.Addr = c.Addr
	cfg.Password = c.Password
	cfg.DB = c.DB
	return cfg
}
