package chunker

import (
	"regexp"
	"strings"
	"unicode"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
)

const reasonNoLists = "no lists detected - treated as single chunk"

// listItemPattern 项目符号或编号列表项，允许缩进的子项
var listItemPattern = regexp.MustCompile(`^\s*([•\-*+]|\d+[.)])\s+`)

func isListItem(l string) bool {
	return listItemPattern.MatchString(l)
}

// isListContinuation 列表内的缩进续行或空行
func isListContinuation(l string) bool {
	if isBlank(l) {
		return true
	}
	return strings.IndexFunc(l, func(r rune) bool { return !unicode.IsSpace(r) }) > 0
}

// NewListChunker 创建列表感知分块器，整个列表尽量保持在同一块中
func NewListChunker(plan ListPlan) Chunker {
	if plan.TargetSize <= 0 {
		plan.TargetSize = DefaultSize
	}
	return &runChunker{
		targetSize: plan.TargetSize,
		strategy:   kbtypes.ChunkStrategyList.String(),
		reason:     reasonNoLists,
		detect:     matchLine(isListItem),
		continues:  isListContinuation,
	}
}
