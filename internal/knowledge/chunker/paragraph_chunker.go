package chunker

import (
	"context"
	"strings"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
)

const paragraphSeparator = "\n\n"

// ParagraphChunker 按空行分隔的段落贪心聚合，段落之间保留原有空行
type ParagraphChunker struct {
	targetSize int
}

// NewParagraphChunker 创建段落分块器
func NewParagraphChunker(plan ParagraphPlan) *ParagraphChunker {
	if plan.TargetSize <= 0 {
		plan.TargetSize = DefaultSize
	}
	return &ParagraphChunker{targetSize: plan.TargetSize}
}

// Chunk 实现 Chunker 接口
func (c *ParagraphChunker) Chunk(_ context.Context, text string) ([]*Chunk, error) {
	idx := newTextIndex(text)
	return accumulate(idx, paragraphSpans(text), c.targetSize, kbtypes.ChunkStrategyParagraph.String()), nil
}

// paragraphSpans 按 "\n\n" 切分，区间不含分隔符
func paragraphSpans(text string) []span {
	spans := make([]span, 0, strings.Count(text, paragraphSeparator)+1)
	start := 0
	for {
		i := strings.Index(text[start:], paragraphSeparator)
		if i < 0 {
			spans = append(spans, span{start: start, end: len(text)})
			return spans
		}
		spans = append(spans, span{start: start, end: start + i})
		start += i + len(paragraphSeparator)
	}
}
