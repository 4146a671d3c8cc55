package chunker

import (
	"context"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/rivo/uniseg"
)

// SentenceChunker 按 UAX #29 句子边界贪心聚合
type SentenceChunker struct {
	targetSize int
}

// NewSentenceChunker 创建句子分块器
func NewSentenceChunker(plan SentencePlan) *SentenceChunker {
	if plan.TargetSize <= 0 {
		plan.TargetSize = DefaultSize
	}
	return &SentenceChunker{targetSize: plan.TargetSize}
}

// Chunk 实现 Chunker 接口
func (c *SentenceChunker) Chunk(_ context.Context, text string) ([]*Chunk, error) {
	idx := newTextIndex(text)
	return accumulate(idx, sentenceSpans(text), c.targetSize, kbtypes.ChunkStrategySentence.String()), nil
}

// sentenceSpans 返回每个句子的字节区间，句子包含其后的空白
func sentenceSpans(text string) []span {
	spans := make([]span, 0, 16)
	state := -1
	offset := 0
	rest := text
	for len(rest) > 0 {
		var sentence string
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		spans = append(spans, span{start: offset, end: offset + len(sentence)})
		offset += len(sentence)
	}
	return spans
}

// accumulate 贪心聚合相邻单元
// 当前块未修剪长度加上下一单元超过 target 且当前块非空时输出
func accumulate(idx *textIndex, units []span, target int, strategy string) []*Chunk {
	chunks := make([]*Chunk, 0, len(units)/2+1)

	var cur span
	curRunes := 0
	open := false

	flush := func() {
		content, start, end := idx.trimmedSpan(cur.start, cur.end)
		if content == "" {
			return
		}
		chunks = append(chunks, &Chunk{
			Content:  content,
			Start:    start,
			End:      end,
			Index:    len(chunks),
			Size:     runeLen(content),
			Strategy: strategy,
		})
	}

	for _, u := range units {
		unitRunes := runeLen(idx.text[u.start:u.end])
		if open && curRunes > 0 && curRunes+unitRunes > target {
			flush()
			cur = u
			curRunes = unitRunes
			continue
		}
		if !open {
			cur = u
			open = true
		} else {
			cur.end = u.end
		}
		curRunes = runeLen(idx.text[cur.start:cur.end])
	}

	if open {
		flush()
	}
	return chunks
}
