package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
)

// codeBoundaryKeywords 函数/类型定义的起始关键字
var codeBoundaryKeywords = []string{
	"fn", "pub fn", "async fn",
	"func",
	"function", "async function", "export function",
	"def", "async def",
	"class", "export class",
	"struct", "pub struct",
	"impl", "trait", "interface", "enum",
}

// CodeChunker 按行扫描，仅在定义边界处切分
type CodeChunker struct {
	targetSize int
}

// NewCodeChunker 创建代码分块器
func NewCodeChunker(plan CodePlan) *CodeChunker {
	if plan.TargetSize <= 0 {
		plan.TargetSize = DefaultSize
	}
	return &CodeChunker{targetSize: plan.TargetSize}
}

// isCodeBoundary 行首（忽略缩进）是否为定义关键字
func isCodeBoundary(l string) bool {
	trimmed := strings.TrimLeftFunc(l, unicode.IsSpace)
	for _, kw := range codeBoundaryKeywords {
		if !strings.HasPrefix(trimmed, kw) {
			continue
		}
		rest := trimmed[len(kw):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return true
		}
	}
	return false
}

// Chunk 实现 Chunker 接口
func (c *CodeChunker) Chunk(_ context.Context, text string) ([]*Chunk, error) {
	idx := newTextIndex(text)
	lines := splitLines(text)
	chunks := make([]*Chunk, 0, 8)

	var first, last line
	curRunes := 0
	open := false

	flush := func() {
		content := strings.TrimRightFunc(text[first.start:last.end], unicode.IsSpace)
		if isBlank(content) {
			return
		}
		start := idx.runeOffset(first.start)
		chunks = append(chunks, &Chunk{
			Content:  content,
			Start:    start,
			End:      start + runeLen(content),
			Index:    len(chunks),
			Size:     runeLen(content),
			Strategy: kbtypes.ChunkStrategyCode.String(),
			Source:   fmt.Sprintf("lines %d-%d", first.num, last.num),
		})
	}

	for _, l := range lines {
		lineRunes := runeLen(l.text)
		if open && curRunes > 0 && curRunes+lineRunes > c.targetSize && isCodeBoundary(l.text) {
			flush()
			open = false
		}
		if !open {
			first = l
			curRunes = 0
			open = true
		}
		last = l
		curRunes += lineRunes + 1
	}

	if open {
		flush()
	}
	return chunks, nil
}
