package chunker

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/lk2023060901/text-chunker/internal/pkg/logger"
	"go.uber.org/zap"
)

// boundaryFinder 在窗口内寻找切分点，返回相对窗口的字节偏移，0 表示未找到
type boundaryFinder func(window string) int

// defaultBoundaryFinders 按优先级排列：句末、段落、单词、字符
var defaultBoundaryFinders = []boundaryFinder{
	findSentenceEnd,
	findParagraphBreak,
	findWordBoundary,
	findCharCut,
}

// findSentenceEnd 窗口内最后一个完整句子的结尾
func findSentenceEnd(window string) int {
	cut := 0
	for _, s := range sentenceSpans(window) {
		if s.end < len(window) {
			cut = s.end
		}
	}
	return cut
}

func findParagraphBreak(window string) int {
	if i := strings.LastIndex(window, paragraphSeparator); i > 0 {
		return i
	}
	return 0
}

func findWordBoundary(window string) int {
	if i := strings.LastIndexFunc(window, unicode.IsSpace); i > 0 {
		return i
	}
	return 0
}

// findCharCut 窗口本身即为 max 个字符
func findCharCut(window string) int {
	return len(window)
}

// RecursiveChunker 超过 max 的文本在窗口内寻找切分点后递归切分
// 小于 min 的块尽量与相邻块合并
type RecursiveChunker struct {
	maxSize int
	minSize int
	finders []boundaryFinder
	logger  *logger.Logger
}

// NewRecursiveChunker 创建递归分块器
func NewRecursiveChunker(plan RecursivePlan, lgr *logger.Logger) *RecursiveChunker {
	if plan.MaxChunkSize <= 0 {
		plan.MaxChunkSize = DefaultMaxChunkSize
	}
	if plan.MinChunkSize <= 0 {
		plan.MinChunkSize = DefaultMinChunkSize
	}
	if plan.MinChunkSize > plan.MaxChunkSize {
		plan.MinChunkSize = plan.MaxChunkSize
	}
	if lgr == nil {
		lgr = logger.Nop()
	}

	return &RecursiveChunker{
		maxSize: plan.MaxChunkSize,
		minSize: plan.MinChunkSize,
		finders: defaultBoundaryFinders,
		logger:  lgr,
	}
}

// Chunk 实现 Chunker 接口
func (c *RecursiveChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	idx := newTextIndex(text)

	pieces := make([]span, 0, len(text)/c.maxSize+1)
	pieces = c.split(text, 0, len(text), pieces)
	pieces, dropped := c.merge(text, pieces)
	if len(dropped) > 0 {
		log := c.logger.WithContext(ctx)
		for _, p := range dropped {
			log.Warn("dropping undersized chunk that cannot be merged",
				zap.Int("start", idx.runeOffset(p.start)),
				zap.Int("end", idx.runeOffset(p.end)),
				zap.Int("size", runeLen(text[p.start:p.end])),
				zap.Int("min_chunk_size", c.minSize))
		}
	}

	chunks := make([]*Chunk, 0, len(pieces))
	for _, p := range pieces {
		content, start, end := idx.trimmedSpan(p.start, p.end)
		if content == "" {
			continue
		}
		chunks = append(chunks, &Chunk{
			Content:  content,
			Start:    start,
			End:      end,
			Index:    len(chunks),
			Size:     runeLen(content),
			Strategy: kbtypes.ChunkStrategyRecursive.String(),
		})
	}
	return chunks, nil
}

// trimBytes 去掉区间首尾空白后的字节区间
func trimBytes(text string, bs, be int) (int, int) {
	seg := text[bs:be]
	left := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
	right := len(strings.TrimRightFunc(seg, unicode.IsSpace))
	if right <= left {
		return bs, bs
	}
	return bs + left, bs + right
}

// split 递归切分 [bs, be)，结果追加到 out
func (c *RecursiveChunker) split(text string, bs, be int, out []span) []span {
	bs, be = trimBytes(text, bs, be)
	if bs == be {
		return out
	}
	if utf8.RuneCountInString(text[bs:be]) <= c.maxSize {
		return append(out, span{start: bs, end: be})
	}

	window := text[bs:runeBoundary(text, bs, c.maxSize)]
	cut := 0
	for _, find := range c.finders {
		if cut = find(window); cut > 0 {
			break
		}
	}

	out = c.split(text, bs, bs+cut, out)
	return c.split(text, bs+cut, be, out)
}

// runeBoundary 从 bs 起向后 n 个码点的字节位置
func runeBoundary(text string, bs, n int) int {
	i := bs
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}

// merge 合并过小的块：优先并入前一块，其次并入后一块，都不行时丢弃（首块保留）
// 第二个返回值为被丢弃的块
func (c *RecursiveChunker) merge(text string, pieces []span) ([]span, []span) {
	out := make([]span, 0, len(pieces))
	var dropped []span
	for i := 0; i < len(pieces); i++ {
		p := pieces[i]
		if runeLen(text[p.start:p.end]) >= c.minSize {
			out = append(out, p)
			continue
		}

		if n := len(out); n > 0 && runeLen(text[out[n-1].start:p.end]) <= c.maxSize {
			out[n-1].end = p.end
			continue
		}
		if i+1 < len(pieces) && runeLen(text[p.start:pieces[i+1].end]) <= c.maxSize {
			pieces[i+1].start = p.start
			continue
		}
		if len(out) == 0 {
			out = append(out, p)
			continue
		}
		dropped = append(dropped, p)
	}
	return out, dropped
}
