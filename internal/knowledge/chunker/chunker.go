package chunker

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Chunker 单一策略的文本分块器
type Chunker interface {
	// Chunk 将文本分块，返回的块按 Index 连续编号
	Chunk(ctx context.Context, text string) ([]*Chunk, error)
}

// Chunk 文本分块
// Start/End 为原文中的码点偏移；Size 为 Content 的码点数（token 策略为字节数）
type Chunk struct {
	Content    string    `json:"content"`
	Start      int       `json:"start"`
	End        int       `json:"end"`
	Index      int       `json:"index"`
	Size       int       `json:"size"`
	Overlap    int       `json:"overlap"`
	Strategy   string    `json:"strategy"`
	Similarity *float32  `json:"similarity,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Source     string    `json:"source,omitempty"`
}

// Result 一次分块调用的结果
type Result struct {
	Chunks         []*Chunk   `json:"chunks"`
	TotalChunks    int        `json:"total_chunks"`
	OriginalLength int        `json:"original_length"`
	Strategy       string     `json:"strategy"`
	Parameters     Parameters `json:"parameters"`
	Metadata       Metadata   `json:"metadata"`
}

// Parameters 调用参数回显，threshold/model 仅在使用 Embedding 的策略中出现
type Parameters struct {
	ChunkSize      int      `json:"chunk_size"`
	Overlap        int      `json:"overlap"`
	Threshold      *float32 `json:"threshold,omitempty"`
	Model          string   `json:"model,omitempty"`
	HeadingLevels  string   `json:"heading_levels,omitempty"`
	SpeakerPattern string   `json:"speaker_pattern,omitempty"`
	TokenLimit     int      `json:"token_limit,omitempty"`
	Tokenizer      string   `json:"tokenizer,omitempty"`
	MaxChunkSize   int      `json:"max_chunk_size,omitempty"`
	MinChunkSize   int      `json:"min_chunk_size,omitempty"`
	LLMModel       string   `json:"llm_model,omitempty"`
}

// Metadata 处理元数据
type Metadata struct {
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	TotalSize        int     `json:"total_size"`
	AverageChunkSize float32 `json:"average_chunk_size"`
	EmbeddingsUsed   bool    `json:"embeddings_used"`
	SourceFile       string  `json:"source_file,omitempty"`
	RunID            string  `json:"run_id"`
}

// runeLen 码点数
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// isBlank 是否只包含空白
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// reindex 按顺序重新编号
func reindex(chunks []*Chunk) []*Chunk {
	for i, c := range chunks {
		c.Index = i
	}
	return chunks
}

// wholeDocument 退化为整篇单块
func wholeDocument(text, strategy, reason string) []*Chunk {
	idx := newTextIndex(text)
	content, start, end := idx.trimmedSpan(0, len(text))
	if content == "" {
		return []*Chunk{}
	}
	return []*Chunk{{
		Content:  content,
		Start:    start,
		End:      end,
		Index:    0,
		Size:     runeLen(content),
		Strategy: strategy,
		Source:   reason,
	}}
}
