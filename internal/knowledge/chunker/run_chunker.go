package chunker

import (
	"context"
)

// lineMatcher 判断一行是否属于某种结构
type lineMatcher func(l string) bool

// runDetector 结合上下文判断第 i 行是否属于某种结构
type runDetector func(lines []line, i int) bool

// matchLine 只看单行的 runDetector
func matchLine(m lineMatcher) runDetector {
	return func(lines []line, i int) bool { return m(lines[i].text) }
}

// runChunker 结构感知分块：连续的结构行组成一个 run，run 作为整体并入当前块
type runChunker struct {
	targetSize int
	strategy   string
	reason     string
	detect     runDetector // run 的起始/主体行
	continues  lineMatcher // run 已打开时可延续的行
}

// segment 连续行区间
type segment struct {
	start int
	end   int
	isRun bool
}

// segments 将文本划分为普通行和 run
func (r *runChunker) segments(lines []line) ([]segment, bool) {
	segs := make([]segment, 0, len(lines))
	found := false

	for i := 0; i < len(lines); {
		l := lines[i]
		if !r.detect(lines, i) {
			segs = append(segs, segment{start: l.start, end: l.end})
			i++
			continue
		}

		found = true
		run := segment{start: l.start, end: l.end, isRun: true}
		j := i + 1
		for j < len(lines) && (r.detect(lines, j) || r.continues(lines[j].text)) {
			j++
		}
		// run 末尾的空行不属于 run
		k := j
		for k > i+1 && isBlank(lines[k-1].text) {
			k--
		}
		run.end = lines[k-1].end
		segs = append(segs, run)
		i = k
	}
	return segs, found
}

// Chunk 实现 Chunker 接口
func (r *runChunker) Chunk(_ context.Context, text string) ([]*Chunk, error) {
	if isBlank(text) {
		return []*Chunk{}, nil
	}

	segs, found := r.segments(splitLines(text))
	if !found {
		return wholeDocument(text, r.strategy, r.reason), nil
	}

	idx := newTextIndex(text)
	chunks := make([]*Chunk, 0, 8)

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
			Strategy: r.strategy,
		})
	}

	for _, seg := range segs {
		segRunes := runeLen(text[seg.start:seg.end])
		if open && curRunes > 0 && curRunes+segRunes > r.targetSize {
			flush()
			open = false
		}
		if !open {
			cur = span{start: seg.start, end: seg.end}
			curRunes = 0
			open = true
		}
		cur.end = seg.end
		if isBlank(text[cur.start:cur.end]) {
			curRunes = 0
			continue
		}
		curRunes += segRunes
	}

	if open {
		flush()
	}
	return chunks, nil
}
