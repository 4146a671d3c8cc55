package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
)

// TokenChunker 以句子为单位，在 Token 预算内聚合
// 单句超出预算时按单词切分，单个单词超出预算时单独成块
type TokenChunker struct {
	limit     int
	tokenizer Tokenizer
}

// NewTokenChunker 创建 Token 分块器
func NewTokenChunker(plan TokenPlan) (*TokenChunker, error) {
	if plan.TokenLimit <= 0 {
		plan.TokenLimit = DefaultTokenLimit
	}

	tokenizer, err := NewTokenizer(plan.Tokenizer)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidParams)
	}

	return &TokenChunker{
		limit:     plan.TokenLimit,
		tokenizer: tokenizer,
	}, nil
}

// Tokenizer 返回使用的分词器
func (c *TokenChunker) Tokenizer() Tokenizer {
	return c.tokenizer
}

// Chunk 实现 Chunker 接口
func (c *TokenChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	idx := newTextIndex(text)
	chunks := make([]*Chunk, 0, 8)

	emit := func(content string, start, end int, source string) {
		chunks = append(chunks, &Chunk{
			Content:  content,
			Start:    start,
			End:      end,
			Index:    len(chunks),
			Size:     len(content),
			Strategy: kbtypes.ChunkStrategyToken.String(),
			Source:   source,
		})
	}

	var cur span
	open := false

	flush := func() {
		if !open {
			return
		}
		open = false
		content, start, end := idx.trimmedSpan(cur.start, cur.end)
		if content == "" {
			return
		}
		emit(content, start, end, fmt.Sprintf("%d tokens", c.tokenizer.Count(content)))
	}

	for _, s := range sentenceSpans(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sentence := strings.TrimSpace(text[s.start:s.end])
		if sentence == "" {
			continue
		}

		if c.tokenizer.Count(sentence) > c.limit {
			flush()
			c.splitWords(idx, s, emit)
			continue
		}

		if !open {
			cur = s
			open = true
			continue
		}

		candidate := strings.TrimSpace(text[cur.start:s.end])
		if c.tokenizer.Count(candidate) > c.limit {
			flush()
			cur = s
			open = true
			continue
		}
		cur.end = s.end
	}
	flush()

	return chunks, nil
}

// splitWords 将超出预算的句子按单词聚合，单词之间以单个空格连接
func (c *TokenChunker) splitWords(idx *textIndex, s span, emit func(content string, start, end int, source string)) {
	words := wordSpans(idx.text, s)

	var parts []string
	var first, last span

	flush := func() {
		if len(parts) == 0 {
			return
		}
		content := strings.Join(parts, " ")
		emit(content, idx.runeOffset(first.start), idx.runeOffset(last.end),
			fmt.Sprintf("%d tokens (word split)", c.tokenizer.Count(content)))
		parts = parts[:0]
	}

	for _, w := range words {
		word := idx.text[w.start:w.end]
		if len(parts) > 0 {
			candidate := strings.Join(parts, " ") + " " + word
			if c.tokenizer.Count(candidate) > c.limit {
				flush()
			}
		}
		if len(parts) == 0 {
			first = w
		}
		parts = append(parts, word)
		last = w
	}
	flush()
}

// wordSpans 返回 s 中以空白分隔的单词区间
func wordSpans(text string, s span) []span {
	words := make([]span, 0, 16)
	start := -1
	for i := s.start; i < s.end; {
		r, size := utf8.DecodeRuneInString(text[i:s.end])
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, span{start: start, end: i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		words = append(words, span{start: start, end: s.end})
	}
	return words
}
