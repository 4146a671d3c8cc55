package types

// ChunkStrategy 分块策略
type ChunkStrategy string

const (
	ChunkStrategyFixed     ChunkStrategy = "fixed"
	ChunkStrategySentence  ChunkStrategy = "sentence"
	ChunkStrategyParagraph ChunkStrategy = "paragraph"
	ChunkStrategyCode      ChunkStrategy = "code"
	ChunkStrategyHeading   ChunkStrategy = "heading"
	ChunkStrategyDialogue  ChunkStrategy = "dialogue"
	ChunkStrategyList      ChunkStrategy = "list"
	ChunkStrategyTable     ChunkStrategy = "table"
	ChunkStrategyToken     ChunkStrategy = "token"
	ChunkStrategyRecursive ChunkStrategy = "recursive"
	ChunkStrategySemantic  ChunkStrategy = "semantic"
	ChunkStrategySmart     ChunkStrategy = "smart"
	ChunkStrategyLLM       ChunkStrategy = "llm"
)

// AllChunkStrategies 全部分块策略，按 CLI 帮助中的顺序排列
func AllChunkStrategies() []ChunkStrategy {
	return []ChunkStrategy{
		ChunkStrategyFixed,
		ChunkStrategySentence,
		ChunkStrategyParagraph,
		ChunkStrategyCode,
		ChunkStrategyHeading,
		ChunkStrategyDialogue,
		ChunkStrategyList,
		ChunkStrategyTable,
		ChunkStrategyToken,
		ChunkStrategyRecursive,
		ChunkStrategySemantic,
		ChunkStrategySmart,
		ChunkStrategyLLM,
	}
}

// Valid 验证分块策略是否有效
func (cs ChunkStrategy) Valid() bool {
	for _, s := range AllChunkStrategies() {
		if s == cs {
			return true
		}
	}
	return false
}

// UsesEmbeddings 策略是否依赖 Embedding 服务
func (cs ChunkStrategy) UsesEmbeddings() bool {
	switch cs {
	case ChunkStrategySemantic, ChunkStrategySmart, ChunkStrategyLLM:
		return true
	default:
		return false
	}
}

func (cs ChunkStrategy) String() string {
	return string(cs)
}

// EmbeddingProvider Embedding 提供商
type EmbeddingProvider string

const (
	// EmbeddingProviderOllama 本地 Ollama /api/embeddings
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
	// EmbeddingProviderOpenAI OpenAI 兼容 Embedding API
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// Valid 验证提供商是否有效
func (ep EmbeddingProvider) Valid() bool {
	switch ep {
	case EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

func (ep EmbeddingProvider) String() string {
	return string(ep)
}

// CacheType Embedding 缓存类型
type CacheType string

const (
	CacheTypeNone   CacheType = "none"
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// Valid 验证缓存类型是否有效
func (ct CacheType) Valid() bool {
	switch ct {
	case CacheTypeNone, CacheTypeMemory, CacheTypeRedis, "":
		return true
	default:
		return false
	}
}
