package chunker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
)

// DefaultSpeakerPattern 默认说话人模式，第 1 个分组为说话人名称
const DefaultSpeakerPattern = `^\s*([A-Z][\w .'-]{0,40}?):(?:\s|$)`

const (
	reasonInvalidSpeakerPattern = "invalid speaker pattern - treated as single chunk"
	reasonNoSpeakers            = "no speakers detected - treated as single chunk"
	speakerNarration            = "narration"
	speakerMatchTimeout         = time.Second
)

// DialogueChunker 按说话人轮次切分
type DialogueChunker struct {
	pattern string
	re      *regexp2.Regexp
	err     error
}

// NewDialogueChunker 创建对话分块器，模式编译失败时 Chunk 退化为整篇单块
func NewDialogueChunker(plan DialoguePlan) *DialogueChunker {
	pattern := plan.SpeakerPattern
	if pattern == "" {
		pattern = DefaultSpeakerPattern
	}

	c := &DialogueChunker{pattern: pattern}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		c.err = apperrors.NewPatternError(err, pattern)
		return c
	}
	re.MatchTimeout = speakerMatchTimeout
	c.re = re
	return c
}

// Err 返回模式编译错误
func (c *DialogueChunker) Err() error {
	return c.err
}

// speaker 返回行首的说话人名称
func (c *DialogueChunker) speaker(s string) (string, bool, error) {
	m, err := c.re.FindStringMatch(s)
	if err != nil {
		return "", false, apperrors.NewPatternError(err, c.pattern)
	}
	if m == nil {
		return "", false, nil
	}

	name := m.String()
	if g := m.GroupByNumber(1); g != nil && g.Length > 0 {
		name = g.String()
	}
	name = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(name), ":"))
	if name == "" {
		return "", false, nil
	}
	return name, true, nil
}

// Chunk 实现 Chunker 接口
func (c *DialogueChunker) Chunk(_ context.Context, text string) ([]*Chunk, error) {
	strategy := kbtypes.ChunkStrategyDialogue.String()
	if isBlank(text) {
		return []*Chunk{}, nil
	}
	if c.err != nil {
		return wholeDocument(text, strategy, reasonInvalidSpeakerPattern), nil
	}

	idx := newTextIndex(text)
	chunks := make([]*Chunk, 0, 8)

	current := speakerNarration
	var first, last line
	open := false
	found := false

	flush := func() {
		content, start, end := idx.trimmedSpan(first.start, last.end)
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
			Source:   fmt.Sprintf("%s (lines %d-%d)", current, first.num, last.num),
		})
	}

	for _, l := range splitLines(text) {
		name, ok, err := c.speaker(text[l.start:l.end])
		if err != nil {
			return wholeDocument(text, strategy, reasonInvalidSpeakerPattern), nil
		}

		if ok {
			found = true
			if name != current {
				if open {
					flush()
				}
				current = name
				first = l
				last = l
				open = true
				continue
			}
		}

		if !open {
			if isBlank(l.text) {
				continue
			}
			first = l
			open = true
		}
		if !isBlank(l.text) {
			last = l
		}
	}

	if !found {
		return wholeDocument(text, strategy, reasonNoSpeakers), nil
	}
	if open {
		flush()
	}
	return chunks, nil
}
