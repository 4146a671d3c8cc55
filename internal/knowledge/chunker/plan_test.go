package chunker

import (
	"testing"

	kbtypes "github.com/lk2023060901/text-chunker/internal/knowledge/types"
	apperrors "github.com/lk2023060901/text-chunker/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_PlanDefaults(t *testing.T) {
	tests := []struct {
		strategy kbtypes.ChunkStrategy
		want     Plan
	}{
		{kbtypes.ChunkStrategyFixed, FixedPlan{Size: 500, Overlap: 0}},
		{kbtypes.ChunkStrategySentence, SentencePlan{TargetSize: 500}},
		{kbtypes.ChunkStrategyParagraph, ParagraphPlan{TargetSize: 500}},
		{kbtypes.ChunkStrategyCode, CodePlan{TargetSize: 500}},
		{kbtypes.ChunkStrategyHeading, HeadingPlan{Levels: "1,2,3"}},
		{kbtypes.ChunkStrategyDialogue, DialoguePlan{}},
		{kbtypes.ChunkStrategyList, ListPlan{TargetSize: 500}},
		{kbtypes.ChunkStrategyTable, TablePlan{TargetSize: 500}},
		{kbtypes.ChunkStrategyToken, TokenPlan{TokenLimit: 512, Tokenizer: "word"}},
		{kbtypes.ChunkStrategyRecursive, RecursivePlan{MaxChunkSize: 1000, MinChunkSize: 100}},
		{kbtypes.ChunkStrategySemantic, SemanticPlan{Model: "nomic-embed-text", Threshold: 0.8}},
		{kbtypes.ChunkStrategySmart, SmartPlan{TargetSize: 500, Model: "nomic-embed-text", Threshold: 0.8}},
		{kbtypes.ChunkStrategyLLM, LLMPlan{EmbedModel: "nomic-embed-text"}},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			plan, err := Options{Strategy: tt.strategy}.Plan()
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan)
			assert.Equal(t, tt.strategy, plan.Strategy())
		})
	}
}

func TestOptions_PlanOverrides(t *testing.T) {
	plan, err := Options{Strategy: kbtypes.ChunkStrategyFixed, Size: 10, Overlap: -1}.Plan()
	require.NoError(t, err)
	assert.Equal(t, FixedPlan{Size: 10, Overlap: DefaultOverlap}, plan)

	plan, err = Options{Strategy: kbtypes.ChunkStrategyToken, TokenLimit: 64, Tokenizer: " GPT "}.Plan()
	require.NoError(t, err)
	assert.Equal(t, TokenPlan{TokenLimit: 64, Tokenizer: "gpt"}, plan)

	plan, err = Options{
		Strategy:    kbtypes.ChunkStrategyLLM,
		LLMModel:    "llama3",
		LLMURL:      "http://llm:11434",
		ChunkPrompt: "split",
		Model:       "embed",
	}.Plan()
	require.NoError(t, err)
	assert.Equal(t, LLMPlan{LLMModel: "llama3", LLMURL: "http://llm:11434", EmbedModel: "embed", Prompt: "split"}, plan)
}

func TestOptions_PlanErrors(t *testing.T) {
	_, err := Options{Strategy: "magic"}.Plan()
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownStrategy))

	_, err = Options{}.Plan()
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownStrategy))

	_, err = Options{Strategy: kbtypes.ChunkStrategyToken, Tokenizer: "bpe"}.Plan()
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))

	_, err = Options{Strategy: kbtypes.ChunkStrategyRecursive, MaxChunkSize: 10, MinChunkSize: 20}.Plan()
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))

	_, err = Options{Strategy: kbtypes.ChunkStrategySemantic, Threshold: float32Ptr(1.2)}.Plan()
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))

	_, err = Options{Strategy: kbtypes.ChunkStrategySmart, Threshold: float32Ptr(-0.1)}.Plan()
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidParams))
}

func TestOptions_ZeroThresholdKept(t *testing.T) {
	plan, err := Options{Strategy: kbtypes.ChunkStrategySemantic, Threshold: float32Ptr(0)}.Plan()
	require.NoError(t, err)
	assert.Equal(t, SemanticPlan{Model: DefaultModel, Threshold: 0}, plan)

	plan, err = Options{Strategy: kbtypes.ChunkStrategySmart, Threshold: float32Ptr(0)}.Plan()
	require.NoError(t, err)
	assert.Equal(t, SmartPlan{TargetSize: DefaultSize, Model: DefaultModel, Threshold: 0}, plan)

	p := Options{Strategy: kbtypes.ChunkStrategySemantic, Threshold: float32Ptr(0)}.parameters()
	require.NotNil(t, p.Threshold)
	assert.Zero(t, *p.Threshold)
}

func TestOptions_RecursiveSingleBound(t *testing.T) {
	plan, err := Options{Strategy: kbtypes.ChunkStrategyRecursive, MaxChunkSize: 50}.Plan()
	require.NoError(t, err)
	assert.Equal(t, RecursivePlan{MaxChunkSize: 50, MinChunkSize: 50}, plan)

	plan, err = Options{Strategy: kbtypes.ChunkStrategyRecursive, MaxChunkSize: 500}.Plan()
	require.NoError(t, err)
	assert.Equal(t, RecursivePlan{MaxChunkSize: 500, MinChunkSize: DefaultMinChunkSize}, plan)

	plan, err = Options{Strategy: kbtypes.ChunkStrategyRecursive, MinChunkSize: 2000}.Plan()
	require.NoError(t, err)
	assert.Equal(t, RecursivePlan{MaxChunkSize: 2000, MinChunkSize: 2000}, plan)
}

func TestOptions_Parameters(t *testing.T) {
	p := Options{Strategy: kbtypes.ChunkStrategyFixed, Size: 100, Overlap: 10}.parameters()
	assert.Equal(t, 100, p.ChunkSize)
	assert.Equal(t, 10, p.Overlap)
	assert.Nil(t, p.Threshold)
	assert.Empty(t, p.Model)

	p = Options{Strategy: kbtypes.ChunkStrategySemantic}.parameters()
	require.NotNil(t, p.Threshold)
	assert.Equal(t, DefaultThreshold, *p.Threshold)
	assert.Equal(t, DefaultModel, p.Model)

	p = Options{Strategy: kbtypes.ChunkStrategyDialogue}.parameters()
	assert.Equal(t, DefaultSpeakerPattern, p.SpeakerPattern)

	p = Options{Strategy: kbtypes.ChunkStrategyRecursive}.parameters()
	assert.Equal(t, 1000, p.MaxChunkSize)
	assert.Equal(t, 100, p.MinChunkSize)
	assert.Zero(t, p.TokenLimit)
}
