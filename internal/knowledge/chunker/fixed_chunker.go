package chunker

import (
	"context"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
)

// FixedChunker 固定窗口分块器，按码点切分，相邻块共享 overlap 个字符
type FixedChunker struct {
	size    int
	overlap int
}

// NewFixedChunker 创建固定窗口分块器
func NewFixedChunker(plan FixedPlan) *FixedChunker {
	if plan.Size <= 0 {
		plan.Size = DefaultSize
	}
	if plan.Overlap < 0 {
		plan.Overlap = 0
	}
	return &FixedChunker{size: plan.Size, overlap: plan.Overlap}
}

// Chunk 实现 Chunker 接口
func (c *FixedChunker) Chunk(_ context.Context, text string) ([]*Chunk, error) {
	runes := []rune(text)
	chunks := make([]*Chunk, 0, len(runes)/c.size+1)
	if len(runes) == 0 {
		return chunks, nil
	}

	step := c.size - c.overlap
	if c.overlap >= c.size {
		step = 1
	}

	for start := 0; start < len(runes); start += step {
		end := min(start+c.size, len(runes))
		content := string(runes[start:end])

		overlap := 0
		if len(chunks) > 0 {
			overlap = min(c.overlap, end-start)
		}

		chunks = append(chunks, &Chunk{
			Content:  content,
			Start:    start,
			End:      end,
			Index:    len(chunks),
			Size:     end - start,
			Overlap:  overlap,
			Strategy: kbtypes.ChunkStrategyFixed.String(),
		})

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
