package chunker

import (
	"fmt"
	"strings"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
)

// 默认参数
const (
	DefaultSize          = 500
	DefaultOverlap       = 50
	DefaultThreshold     = float32(0.8)
	DefaultModel         = "nomic-embed-text"
	DefaultTokenLimit    = 512
	DefaultTokenizer     = TokenizerWord
	DefaultMaxChunkSize  = 1000
	DefaultMinChunkSize  = 100
	DefaultHeadingLevels = "1,2,3"
)

// Options 一次分块调用的扁平参数
// 数值参数非正时回退到默认值
type Options struct {
	Strategy       kbtypes.ChunkStrategy `json:"strategy" mapstructure:"strategy"`
	Size           int                   `json:"size" mapstructure:"size"`
	Overlap        int                   `json:"overlap" mapstructure:"overlap"`
	Model          string                `json:"model" mapstructure:"model"`
	Threshold      *float32              `json:"threshold" mapstructure:"threshold"` // 为空时使用 DefaultThreshold，0 表示不按相似度切分
	Source         string                `json:"source" mapstructure:"source"`
	LLMModel       string                `json:"llm_model" mapstructure:"llm_model"`
	LLMURL         string                `json:"llm_url" mapstructure:"llm_url"`
	ChunkPrompt    string                `json:"chunk_prompt" mapstructure:"chunk_prompt"`
	HeadingLevels  string                `json:"heading_levels" mapstructure:"heading_levels"`
	SpeakerPattern string                `json:"speaker_pattern" mapstructure:"speaker_pattern"`
	TokenLimit     int                   `json:"token_limit" mapstructure:"token_limit"`
	Tokenizer      string                `json:"tokenizer" mapstructure:"tokenizer"`
	MaxChunkSize   int                   `json:"max_chunk_size" mapstructure:"max_chunk_size"`
	MinChunkSize   int                   `json:"min_chunk_size" mapstructure:"min_chunk_size"`
}

// Plan 已解析的策略参数，仅由本包中的类型实现
type Plan interface {
	Strategy() kbtypes.ChunkStrategy
	isPlan()
}

// FixedPlan 固定窗口
type FixedPlan struct {
	Size    int
	Overlap int
}

// SentencePlan 句子聚合
type SentencePlan struct {
	TargetSize int
}

// ParagraphPlan 段落聚合
type ParagraphPlan struct {
	TargetSize int
}

// CodePlan 代码边界
type CodePlan struct {
	TargetSize int
}

// HeadingPlan Markdown 标题
type HeadingPlan struct {
	Levels string
}

// DialoguePlan 对话轮次
type DialoguePlan struct {
	SpeakerPattern string
}

// ListPlan 列表感知
type ListPlan struct {
	TargetSize int
}

// TablePlan 表格感知
type TablePlan struct {
	TargetSize int
}

// TokenPlan Token 预算
type TokenPlan struct {
	TokenLimit int
	Tokenizer  string
}

// RecursivePlan 递归切分
type RecursivePlan struct {
	MaxChunkSize int
	MinChunkSize int
}

// SemanticPlan 语义切分
type SemanticPlan struct {
	Model     string
	Threshold float32
}

// SmartPlan 语义切分后对超大块按句子再切分
type SmartPlan struct {
	TargetSize int
	Model      string
	Threshold  float32
}

// LLMPlan 由 LLM 标注边界
type LLMPlan struct {
	LLMModel   string
	LLMURL     string
	EmbedModel string
	Prompt     string
}

func (FixedPlan) Strategy() kbtypes.ChunkStrategy     { return kbtypes.ChunkStrategyFixed }
func (SentencePlan) Strategy() kbtypes.ChunkStrategy  { return kbtypes.ChunkStrategySentence }
func (ParagraphPlan) Strategy() kbtypes.ChunkStrategy { return kbtypes.ChunkStrategyParagraph }
func (CodePlan) Strategy() kbtypes.ChunkStrategy      { return kbtypes.ChunkStrategyCode }
func (HeadingPlan) Strategy() kbtypes.ChunkStrategy   { return kbtypes.ChunkStrategyHeading }
func (DialoguePlan) Strategy() kbtypes.ChunkStrategy  { return kbtypes.ChunkStrategyDialogue }
func (ListPlan) Strategy() kbtypes.ChunkStrategy      { return kbtypes.ChunkStrategyList }
func (TablePlan) Strategy() kbtypes.ChunkStrategy     { return kbtypes.ChunkStrategyTable }
func (TokenPlan) Strategy() kbtypes.ChunkStrategy     { return kbtypes.ChunkStrategyToken }
func (RecursivePlan) Strategy() kbtypes.ChunkStrategy { return kbtypes.ChunkStrategyRecursive }
func (SemanticPlan) Strategy() kbtypes.ChunkStrategy  { return kbtypes.ChunkStrategySemantic }
func (SmartPlan) Strategy() kbtypes.ChunkStrategy     { return kbtypes.ChunkStrategySmart }
func (LLMPlan) Strategy() kbtypes.ChunkStrategy       { return kbtypes.ChunkStrategyLLM }

func (FixedPlan) isPlan()     {}
func (SentencePlan) isPlan()  {}
func (ParagraphPlan) isPlan() {}
func (CodePlan) isPlan()      {}
func (HeadingPlan) isPlan()   {}
func (DialoguePlan) isPlan()  {}
func (ListPlan) isPlan()      {}
func (TablePlan) isPlan()     {}
func (TokenPlan) isPlan()     {}
func (RecursivePlan) isPlan() {}
func (SemanticPlan) isPlan()  {}
func (SmartPlan) isPlan()     {}
func (LLMPlan) isPlan()       {}

// withDefaults 返回补齐默认值后的副本
func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Overlap < 0 {
		o.Overlap = DefaultOverlap
	}
	if o.Threshold == nil {
		threshold := DefaultThreshold
		o.Threshold = &threshold
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.TokenLimit <= 0 {
		o.TokenLimit = DefaultTokenLimit
	}
	if o.Tokenizer == "" {
		o.Tokenizer = DefaultTokenizer
	}
	o.Tokenizer = strings.ToLower(strings.TrimSpace(o.Tokenizer))
	// 只设置了一端时，默认的另一端向其靠拢
	switch {
	case o.MaxChunkSize <= 0 && o.MinChunkSize <= 0:
		o.MaxChunkSize = DefaultMaxChunkSize
		o.MinChunkSize = DefaultMinChunkSize
	case o.MinChunkSize <= 0:
		o.MinChunkSize = min(DefaultMinChunkSize, o.MaxChunkSize)
	case o.MaxChunkSize <= 0:
		o.MaxChunkSize = max(DefaultMaxChunkSize, o.MinChunkSize)
	}
	if o.HeadingLevels == "" {
		o.HeadingLevels = DefaultHeadingLevels
	}
	return o
}

// Plan 将扁平参数转换为对应策略的 Plan
func (o Options) Plan() (Plan, error) {
	o = o.withDefaults()

	switch o.Strategy {
	case kbtypes.ChunkStrategyFixed:
		return FixedPlan{Size: o.Size, Overlap: o.Overlap}, nil
	case kbtypes.ChunkStrategySentence:
		return SentencePlan{TargetSize: o.Size}, nil
	case kbtypes.ChunkStrategyParagraph:
		return ParagraphPlan{TargetSize: o.Size}, nil
	case kbtypes.ChunkStrategyCode:
		return CodePlan{TargetSize: o.Size}, nil
	case kbtypes.ChunkStrategyHeading:
		return HeadingPlan{Levels: o.HeadingLevels}, nil
	case kbtypes.ChunkStrategyDialogue:
		return DialoguePlan{SpeakerPattern: o.SpeakerPattern}, nil
	case kbtypes.ChunkStrategyList:
		return ListPlan{TargetSize: o.Size}, nil
	case kbtypes.ChunkStrategyTable:
		return TablePlan{TargetSize: o.Size}, nil
	case kbtypes.ChunkStrategyToken:
		if !validTokenizer(o.Tokenizer) {
			return nil, apperrors.NewInvalidParams("unknown tokenizer: " + o.Tokenizer)
		}
		return TokenPlan{TokenLimit: o.TokenLimit, Tokenizer: o.Tokenizer}, nil
	case kbtypes.ChunkStrategyRecursive:
		if o.MinChunkSize > o.MaxChunkSize {
			return nil, apperrors.NewInvalidParams("min_chunk_size must not exceed max_chunk_size")
		}
		return RecursivePlan{MaxChunkSize: o.MaxChunkSize, MinChunkSize: o.MinChunkSize}, nil
	case kbtypes.ChunkStrategySemantic:
		if err := validThreshold(*o.Threshold); err != nil {
			return nil, err
		}
		return SemanticPlan{Model: o.Model, Threshold: *o.Threshold}, nil
	case kbtypes.ChunkStrategySmart:
		if err := validThreshold(*o.Threshold); err != nil {
			return nil, err
		}
		return SmartPlan{TargetSize: o.Size, Model: o.Model, Threshold: *o.Threshold}, nil
	case kbtypes.ChunkStrategyLLM:
		return LLMPlan{
			LLMModel:   o.LLMModel,
			LLMURL:     o.LLMURL,
			EmbedModel: o.Model,
			Prompt:     o.ChunkPrompt,
		}, nil
	default:
		return nil, apperrors.NewUnknownStrategy(string(o.Strategy))
	}
}

func validThreshold(threshold float32) error {
	if threshold < 0 || threshold > 1 {
		return apperrors.NewInvalidParams(fmt.Sprintf("threshold must be within [0, 1], got %g", threshold))
	}
	return nil
}

// parameters 生成结果中的参数回显
func (o Options) parameters() Parameters {
	o = o.withDefaults()
	p := Parameters{
		ChunkSize: o.Size,
		Overlap:   o.Overlap,
	}

	if o.Strategy.UsesEmbeddings() {
		p.Model = o.Model
	}
	if o.Strategy == kbtypes.ChunkStrategySemantic || o.Strategy == kbtypes.ChunkStrategySmart {
		threshold := *o.Threshold
		p.Threshold = &threshold
	}

	switch o.Strategy {
	case kbtypes.ChunkStrategyHeading:
		p.HeadingLevels = o.HeadingLevels
	case kbtypes.ChunkStrategyDialogue:
		p.SpeakerPattern = o.SpeakerPattern
		if p.SpeakerPattern == "" {
			p.SpeakerPattern = DefaultSpeakerPattern
		}
	case kbtypes.ChunkStrategyToken:
		p.TokenLimit = o.TokenLimit
		p.Tokenizer = o.Tokenizer
	case kbtypes.ChunkStrategyRecursive:
		p.MaxChunkSize = o.MaxChunkSize
		p.MinChunkSize = o.MinChunkSize
	case kbtypes.ChunkStrategyLLM:
		p.LLMModel = o.LLMModel
	}
	return p
}
