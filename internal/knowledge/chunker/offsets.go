package chunker

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// textIndex 字节偏移到码点偏移的映射
type textIndex struct {
	text   string
	starts []int // 每个码点的起始字节偏移
}

func newTextIndex(text string) *textIndex {
	starts := make([]int, 0, len(text))
	for i := range text {
		starts = append(starts, i)
	}
	return &textIndex{text: text, starts: starts}
}

// runeOffset 返回字节偏移对应的码点偏移，b 可以等于 len(text)
func (t *textIndex) runeOffset(b int) int {
	return sort.SearchInts(t.starts, b)
}

// trimmedSpan 截取 [bs, be) 并去掉首尾空白，返回内容及码点偏移
func (t *textIndex) trimmedSpan(bs, be int) (string, int, int) {
	seg := t.text[bs:be]
	left := len(seg) - len(strings.TrimLeftFunc(seg, unicode.IsSpace))
	seg = strings.TrimSpace(seg)
	if seg == "" {
		start := t.runeOffset(bs)
		return "", start, start
	}
	start := t.runeOffset(bs + left)
	return seg, start, start + utf8.RuneCountInString(seg)
}

// span 字节区间
type span struct {
	start int
	end   int
}

// line 带字节偏移的文本行，不含换行符
type line struct {
	text  string
	start int
	end   int // 含换行符之后的位置
	num   int // 从 1 开始
}

// splitLines 按 \n 切分，保留每行在原文中的位置
func splitLines(text string) []line {
	lines := make([]line, 0, strings.Count(text, "\n")+1)
	start := 0
	num := 1
	for start < len(text) {
		nl := strings.IndexByte(text[start:], '\n')
		if nl < 0 {
			lines = append(lines, line{text: strings.TrimSuffix(text[start:], "\r"), start: start, end: len(text), num: num})
			break
		}
		lines = append(lines, line{text: strings.TrimSuffix(text[start:start+nl], "\r"), start: start, end: start + nl + 1, num: num})
		start += nl + 1
		num++
	}
	return lines
}
