package chunker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

const (
	reasonNoHeadingLevels = "no valid heading levels - treated as single chunk"
	reasonNoHeaders       = "no headers found - treated as single chunk"
	sourcePreamble        = "preamble"
)

// HeadingChunker 在指定级别的 Markdown ATX 标题处切分
// 围栏代码块和缩进代码块中的 # 行不视为标题
type HeadingChunker struct {
	levels map[int]bool
	md     goldmark.Markdown
}

// NewHeadingChunker 创建标题分块器，levels 为逗号分隔的 1-6，非法项忽略
func NewHeadingChunker(plan HeadingPlan) *HeadingChunker {
	return &HeadingChunker{
		levels: parseHeadingLevels(plan.Levels),
		md:     goldmark.New(),
	}
}

func parseHeadingLevels(s string) map[int]bool {
	levels := make(map[int]bool, 6)
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > 6 {
			continue
		}
		levels[n] = true
	}
	return levels
}

// atxHeading 解析 ATX 标题行，返回级别与标题文本
func atxHeading(l string) (int, string, bool) {
	indent := 0
	for indent < len(l) && l[indent] == ' ' {
		indent++
	}
	if indent > 3 {
		return 0, "", false
	}
	l = l[indent:]

	level := 0
	for level < len(l) && l[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := l[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}

	title := strings.TrimSpace(rest)
	closed := strings.TrimRight(title, "#")
	switch {
	case closed == "":
		title = ""
	case strings.HasSuffix(closed, " ") || strings.HasSuffix(closed, "\t"):
		title = strings.TrimSpace(closed)
	}
	return level, title, true
}

// codeLines 返回位于代码块内的行号集合
func (c *HeadingChunker) codeLines(text string, lines []line) map[int]bool {
	inCode := make(map[int]bool)
	starts := make([]int, len(lines))
	for i, l := range lines {
		starts[i] = l.start
	}

	doc := c.md.Parser().Parse(gmtext.NewReader([]byte(text)))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Kind() != ast.KindFencedCodeBlock && n.Kind() != ast.KindCodeBlock {
			return ast.WalkContinue, nil
		}
		segs := n.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			li := sort.SearchInts(starts, seg.Start+1) - 1
			if li >= 0 {
				inCode[lines[li].num] = true
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return inCode
}

// Chunk 实现 Chunker 接口
func (c *HeadingChunker) Chunk(_ context.Context, text string) ([]*Chunk, error) {
	strategy := kbtypes.ChunkStrategyHeading.String()
	if isBlank(text) {
		return []*Chunk{}, nil
	}
	if len(c.levels) == 0 {
		return wholeDocument(text, strategy, reasonNoHeadingLevels), nil
	}

	idx := newTextIndex(text)
	lines := splitLines(text)
	inCode := c.codeLines(text, lines)

	chunks := make([]*Chunk, 0, 8)
	sectionStart := 0
	label := sourcePreamble
	found := false

	flush := func(end int) {
		content, start, stop := idx.trimmedSpan(sectionStart, end)
		if content == "" {
			return
		}
		chunks = append(chunks, &Chunk{
			Content:  content,
			Start:    start,
			End:      stop,
			Index:    len(chunks),
			Size:     runeLen(content),
			Strategy: strategy,
			Source:   label,
		})
	}

	for _, l := range lines {
		if inCode[l.num] {
			continue
		}
		level, title, ok := atxHeading(l.text)
		if !ok || !c.levels[level] {
			continue
		}
		found = true
		flush(l.start)
		sectionStart = l.start
		label = fmt.Sprintf("h%d: %s", level, title)
	}

	if !found {
		return wholeDocument(text, strategy, reasonNoHeaders), nil
	}
	flush(len(text))
	return chunks, nil
}
