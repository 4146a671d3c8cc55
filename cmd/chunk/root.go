package main

import (
	"fmt"

	"github.com/lk2023060901/text-chunker/internal/conf"
	"github.com/lk2023060901/text-chunker/internal/knowledge/chunker"
	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// 命令行参数名
const (
	flagConfig         = "config"
	flagStrategy       = "strategy"
	flagSize           = "size"
	flagOverlap        = "overlap"
	flagModel          = "model"
	flagThreshold      = "threshold"
	flagLLMModel       = "llm-model"
	flagLLMURL         = "llm-url"
	flagChunkPrompt    = "chunk-prompt"
	flagHeadingLevels  = "heading-levels"
	flagSpeakerPattern = "speaker-pattern"
	flagTokenLimit     = "token-limit"
	flagTokenizer      = "tokenizer"
	flagMaxChunkSize   = "max-chunk-size"
	flagMinChunkSize   = "min-chunk-size"
	flagFormat         = "format"
	flagVerbose        = "verbose"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chunk",
		Short: "Split text into chunks with one of several strategies",
		Long: `chunk splits text into ordered chunks for retrieval pipelines.

Strategies: fixed, sentence, paragraph, code, heading, dialogue, list,
table, token, recursive, semantic, smart, llm.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "path to config file (yaml)")
	flags.StringP(flagStrategy, "s", kbtypes.ChunkStrategyFixed.String(), "chunking strategy")
	flags.Int(flagSize, chunker.DefaultSize, "target chunk size in characters")
	flags.Int(flagOverlap, chunker.DefaultOverlap, "overlap between fixed chunks")
	flags.String(flagModel, chunker.DefaultModel, "embedding model for semantic, smart and llm")
	flags.Float32(flagThreshold, chunker.DefaultThreshold, "similarity threshold for semantic and smart")
	flags.String(flagLLMModel, "", "LLM model used by the llm strategy")
	flags.String(flagLLMURL, "", "LLM base URL override for the llm strategy")
	flags.String(flagChunkPrompt, "", "instruction prompt for the llm strategy")
	flags.String(flagHeadingLevels, chunker.DefaultHeadingLevels, "comma separated heading levels")
	flags.String(flagSpeakerPattern, "", "speaker regex for the dialogue strategy")
	flags.Int(flagTokenLimit, chunker.DefaultTokenLimit, "tokens per chunk for the token strategy")
	flags.String(flagTokenizer, chunker.DefaultTokenizer, "tokenizer: word, gpt or tiktoken")
	flags.Int(flagMaxChunkSize, chunker.DefaultMaxChunkSize, "maximum chunk size for the recursive strategy")
	flags.Int(flagMinChunkSize, chunker.DefaultMinChunkSize, "minimum chunk size for the recursive strategy")
	flags.StringP(flagFormat, "f", formatJSON, "output format: json, text or csv")
	flags.BoolP(flagVerbose, "v", false, "enable debug logging")

	root.AddCommand(newTextCmd(), newFileCmd(), newURLCmd(), newBatchCmd())
	return root
}

// setup 加载配置并组装应用，返回本次调用使用的分块参数
func setup(cmd *cobra.Command) (*app, chunker.Options, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString(flagConfig)
	config, err := conf.LoadConfig(path)
	if err != nil {
		return nil, chunker.Options{}, err
	}

	opts, err := buildOptions(config, flags)
	if err != nil {
		return nil, chunker.Options{}, err
	}

	verbose, _ := flags.GetBool(flagVerbose)
	a, err := newApp(config, verbose)
	if err != nil {
		return nil, chunker.Options{}, err
	}
	return a, opts, nil
}

// buildOptions 以配置文件为基础，显式传入的参数覆盖配置
func buildOptions(config *conf.Config, flags *pflag.FlagSet) (chunker.Options, error) {
	c := config.Chunk
	threshold := float32(c.Threshold)
	opts := chunker.Options{
		Strategy:       kbtypes.ChunkStrategy(c.Strategy),
		Size:           c.Size,
		Overlap:        c.Overlap,
		Model:          c.Model,
		Threshold:      &threshold,
		LLMModel:       config.LLM.Model,
		HeadingLevels:  c.HeadingLevels,
		SpeakerPattern: c.SpeakerPattern,
		TokenLimit:     c.TokenLimit,
		Tokenizer:      c.Tokenizer,
		MaxChunkSize:   c.MaxChunkSize,
		MinChunkSize:   c.MinChunkSize,
	}

	stringFlags := map[string]*string{
		flagModel:          &opts.Model,
		flagLLMModel:       &opts.LLMModel,
		flagLLMURL:         &opts.LLMURL,
		flagChunkPrompt:    &opts.ChunkPrompt,
		flagHeadingLevels:  &opts.HeadingLevels,
		flagSpeakerPattern: &opts.SpeakerPattern,
		flagTokenizer:      &opts.Tokenizer,
	}
	intFlags := map[string]*int{
		flagSize:         &opts.Size,
		flagOverlap:      &opts.Overlap,
		flagTokenLimit:   &opts.TokenLimit,
		flagMaxChunkSize: &opts.MaxChunkSize,
		flagMinChunkSize: &opts.MinChunkSize,
	}

	var err error
	if flags.Changed(flagStrategy) {
		var s string
		s, err = flags.GetString(flagStrategy)
		opts.Strategy = kbtypes.ChunkStrategy(s)
	}
	if err == nil && flags.Changed(flagThreshold) {
		threshold, err = flags.GetFloat32(flagThreshold)
	}
	for name, dst := range stringFlags {
		if err != nil || !flags.Changed(name) {
			continue
		}
		*dst, err = flags.GetString(name)
	}
	for name, dst := range intFlags {
		if err != nil || !flags.Changed(name) {
			continue
		}
		*dst, err = flags.GetInt(name)
	}
	if err != nil {
		return chunker.Options{}, fmt.Errorf("invalid flag: %w", err)
	}

	return opts, nil
}
