package chunker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headingDoc = "intro text\n# Title\nbody one\n## Sub\nbody two\n\n```\n# not a heading\n```\n\nmore\n"

func TestAtxHeading(t *testing.T) {
	tests := []struct {
		line  string
		ok    bool
		level int
		title string
	}{
		{"# Title", true, 1, "Title"},
		{"### Closed ###", true, 3, "Closed"},
		{"   ## Indented", true, 2, "Indented"},
		{"#", true, 1, ""},
		{"#hashtag", false, 0, ""},
		{"    # code", false, 0, ""},
		{"####### seven", false, 0, ""},
		{"## C#", true, 2, "C#"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			level, title, ok := atxHeading(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestParseHeadingLevels(t *testing.T) {
	levels := parseHeadingLevels(" 1, 3,x,7,0,3")
	assert.Equal(t, map[int]bool{1: true, 3: true}, levels)
	assert.Empty(t, parseHeadingLevels(""))
}

func TestHeadingChunker_Sections(t *testing.T) {
	chunks, err := NewHeadingChunker(HeadingPlan{Levels: "1,2"}).Chunk(context.Background(), headingDoc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "preamble", chunks[0].Source)
	assert.Equal(t, "intro text", chunks[0].Content)
	assert.Equal(t, "h1: Title", chunks[1].Source)
	assert.Equal(t, "# Title\nbody one", chunks[1].Content)
	assert.Equal(t, "h2: Sub", chunks[2].Source)
	assert.Contains(t, chunks[2].Content, "# not a heading")
	assert.Contains(t, chunks[2].Content, "more")

	assertLiteral(t, headingDoc, chunks)
	assertOrdered(t, chunks)
	assertIndexed(t, chunks)
}

func TestHeadingChunker_LevelFilter(t *testing.T) {
	chunks, err := NewHeadingChunker(HeadingPlan{Levels: "1"}).Chunk(context.Background(), headingDoc)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "h1: Title", chunks[1].Source)
	assert.Contains(t, chunks[1].Content, "## Sub")
}

func TestHeadingChunker_Degrades(t *testing.T) {
	text := "plain text\nwithout any headings"

	chunks, err := NewHeadingChunker(HeadingPlan{Levels: "1,2,3"}).Chunk(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Source, "no headers found")
	assert.Equal(t, text, chunks[0].Content)

	chunks, err = NewHeadingChunker(HeadingPlan{Levels: "9,x"}).Chunk(context.Background(), headingDoc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, reasonNoHeadingLevels, chunks[0].Source)
}

func TestHeadingChunker_FencedOnly(t *testing.T) {
	text := "```\n# inside fence\n```\n"
	chunks, err := NewHeadingChunker(HeadingPlan{Levels: "1"}).Chunk(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, reasonNoHeaders, chunks[0].Source)
}
