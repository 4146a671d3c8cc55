package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lk2023060901/text-chunker/internal/knowledge/chunker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	flagOutput    = "output"
	flagPattern   = "pattern"
	flagOutputDir = "output-dir"
)

func newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <content>",
		Short: "Chunk text given as an argument, or read from stdin with -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := args[0]
			if content == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				content = string(data)
			}
			return runChunk(cmd, "", func(context.Context, *app) (string, error) {
				return content, nil
			})
		},
	}
}

func newFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Chunk the contents of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunk(cmd, args[0], func(ctx context.Context, a *app) (string, error) {
				doc, err := a.loaders.LoadFile(ctx, args[0])
				if err != nil {
					return "", fmt.Errorf("failed to read file: %w", err)
				}
				return doc.Content, nil
			})
		},
	}
	cmd.Flags().StringP(flagOutput, "o", "", "write the result to this file instead of stdout")
	return cmd
}

func newURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url <url>",
		Short: "Fetch a web page or document and chunk its text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChunk(cmd, args[0], func(ctx context.Context, a *app) (string, error) {
				doc, err := a.urls.LoadURL(ctx, args[0])
				if err != nil {
					return "", err
				}
				return doc.Content, nil
			})
		},
	}
	cmd.Flags().StringP(flagOutput, "o", "", "write the result to this file instead of stdout")
	return cmd
}

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Chunk every matching file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	cmd.Flags().String(flagPattern, "*", "glob pattern matched against file names")
	cmd.Flags().String(flagOutputDir, "", "directory for <name>_chunks.<ext> results (default: print to stdout)")
	return cmd
}

// runChunk 加载一份内容、分块并写出结果
// 命令定义了 --output 且非空时写入文件，否则写 stdout
func runChunk(cmd *cobra.Command, source string, load func(context.Context, *app) (string, error)) error {
	format, _ := cmd.Flags().GetString(flagFormat)
	if err := validFormat(format); err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString(flagOutput)

	a, opts, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	content, err := load(cmd.Context(), a)
	if err != nil {
		return err
	}

	opts.Source = source
	result, err := a.engine.ChunkText(cmd.Context(), content, opts)
	if err != nil {
		return err
	}

	if output == "" {
		return writeResult(cmd.OutOrStdout(), result, format)
	}
	if err := writeFile(output, result, format); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d chunks to %s\n", result.TotalChunks, output)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString(flagFormat)
	if err := validFormat(format); err != nil {
		return err
	}
	pattern, _ := flags.GetString(flagPattern)
	outputDir, _ := flags.GetString(flagOutputDir)

	files, err := matchFiles(args[0], pattern)
	if err != nil {
		return err
	}

	a, opts, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var failed int
	for _, path := range files {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		doc, err := a.loaders.LoadFile(cmd.Context(), path)
		if err != nil {
			failed++
			a.log.Error("failed to read file", zap.String("file", path), zap.Error(err))
			continue
		}

		opts.Source = path
		result, err := a.engine.ChunkText(cmd.Context(), doc.Content, opts)
		if err != nil {
			failed++
			a.log.Error("failed to chunk file", zap.String("file", path), zap.Error(err))
			continue
		}

		if outputDir == "" {
			if err := writeResult(cmd.OutOrStdout(), result, format); err != nil {
				return err
			}
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out := filepath.Join(outputDir, stem+"_chunks."+formatExt(format))
		if err := writeFile(out, result, format); err != nil {
			failed++
			a.log.Error("failed to write result", zap.String("file", out), zap.Error(err))
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d chunks -> %s\n", path, result.TotalChunks, out)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "processed %d files, %d failed\n", len(files), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// matchFiles 返回目录下文件名匹配 pattern 的普通文件，按路径排序
func matchFiles(dir, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(pattern, e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func writeFile(path string, result *chunker.Result, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeResult(f, result, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return f.Close()
}
