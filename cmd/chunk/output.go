package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lk2023060901/text-chunker/internal/knowledge/chunker"
)

// 输出格式
const (
	formatJSON = "json"
	formatText = "text"
	formatCSV  = "csv"
)

// formatExt 输出格式对应的文件扩展名
func formatExt(format string) string {
	if format == formatText {
		return "txt"
	}
	return format
}

func validFormat(format string) error {
	switch format {
	case formatJSON, formatText, formatCSV:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (expected json, text or csv)", format)
	}
}

// writeResult 按指定格式写出分块结果
func writeResult(w io.Writer, result *chunker.Result, format string) error {
	switch format {
	case formatText:
		return writeText(w, result)
	case formatCSV:
		return writeCSV(w, result)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

func writeText(w io.Writer, result *chunker.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "strategy: %s\n", result.Strategy)
	fmt.Fprintf(&b, "total_chunks: %d\n", result.TotalChunks)
	fmt.Fprintf(&b, "original_length: %d\n", result.OriginalLength)
	fmt.Fprintf(&b, "processing_time_ms: %d\n", result.Metadata.ProcessingTimeMs)
	if result.Metadata.SourceFile != "" {
		fmt.Fprintf(&b, "source_file: %s\n", result.Metadata.SourceFile)
	}

	for _, c := range result.Chunks {
		fmt.Fprintf(&b, "\n--- chunk %d [%d:%d] size=%d", c.Index, c.Start, c.End, c.Size)
		if c.Source != "" {
			fmt.Fprintf(&b, " source=%q", c.Source)
		}
		if c.Similarity != nil {
			fmt.Fprintf(&b, " similarity=%.4f", *c.Similarity)
		}
		b.WriteString(" ---\n")
		b.WriteString(c.Content)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSV(w io.Writer, result *chunker.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "start", "end", "size", "overlap", "strategy", "similarity", "source", "content"}); err != nil {
		return err
	}

	for _, c := range result.Chunks {
		similarity := ""
		if c.Similarity != nil {
			similarity = strconv.FormatFloat(float64(*c.Similarity), 'f', 4, 32)
		}
		row := []string{
			strconv.Itoa(c.Index),
			strconv.Itoa(c.Start),
			strconv.Itoa(c.End),
			strconv.Itoa(c.Size),
			strconv.Itoa(c.Overlap),
			c.Strategy,
			similarity,
			c.Source,
			c.Content,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
