package chunker

import (
	"regexp"
	"strings"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
)

const (
	reasonNoTables = "no tables detected - treated as single chunk"
	maxCSVField    = 64
)

// tableSeparatorPattern Markdown 表格分隔行，如 |---|:--:|
var tableSeparatorPattern = regexp.MustCompile(`^\s*\|?\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|?\s*$`)

func isPipeRow(l string) bool {
	t := strings.TrimSpace(l)
	if strings.Count(t, "|") >= 2 {
		return true
	}
	return len(t) > 1 && strings.HasPrefix(t, "|") && strings.HasSuffix(t, "|")
}

func isTableSeparator(l string) bool {
	return strings.Contains(l, "|") && tableSeparatorPattern.MatchString(l)
}

// csvFields 类 CSV 行的字段数，不像 CSV 时返回 0
func csvFields(l string) int {
	if strings.Count(l, ",") < 2 {
		return 0
	}
	fields := strings.Split(l, ",")
	for _, field := range fields {
		if runeLen(strings.TrimSpace(field)) > maxCSVField {
			return 0
		}
	}
	return len(fields)
}

func isTSVRow(l string) bool {
	if !strings.Contains(l, "\t") {
		return false
	}
	fields := 0
	for _, field := range strings.Split(l, "\t") {
		if strings.TrimSpace(field) != "" {
			fields++
		}
	}
	return fields >= 2
}

// isTableLine 管道行、分隔行、TSV 行单独成立；
// 类 CSV 行需要相邻行也是字段数相同的类 CSV 行，带逗号的散文不算表格
func isTableLine(lines []line, i int) bool {
	l := lines[i].text
	if isBlank(l) {
		return false
	}
	if isPipeRow(l) || isTableSeparator(l) || isTSVRow(l) {
		return true
	}

	n := csvFields(l)
	if n == 0 {
		return false
	}
	return (i > 0 && csvFields(lines[i-1].text) == n) ||
		(i+1 < len(lines) && csvFields(lines[i+1].text) == n)
}

// NewTableChunker 创建表格感知分块器，表格中的空行保留在表格内
func NewTableChunker(plan TablePlan) Chunker {
	if plan.TargetSize <= 0 {
		plan.TargetSize = DefaultSize
	}
	return &runChunker{
		targetSize: plan.TargetSize,
		strategy:   kbtypes.ChunkStrategyTable.String(),
		reason:     reasonNoTables,
		detect:     isTableLine,
		continues:  isBlank,
	}
}
