package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefcast/internal/core/domain"
)

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestSplit_InvalidLimit(t *testing.T) {
	_, err := Split("some text", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = Split("some text", -5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSplit_Empty(t *testing.T) {
	segments, err := Split("", 100)
	require.NoError(t, err)
	assert.Empty(t, segments)

	segments, err = Split("   \n\t ", 100)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	segments, err := Split("Hello world.", 100)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "Hello world.", segments[0])
}

func TestSplit_PrefersSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one ends it."
	segments, err := Split(text, 30)
	require.NoError(t, err)

	require.Len(t, segments, 3)
	assert.Equal(t, "First sentence here.", segments[0])
	assert.Equal(t, "Second sentence follows.", segments[1])
	assert.Equal(t, "Third one ends it.", segments[2])
}

func TestSplit_FallsBackToWordBoundaries(t *testing.T) {
	text := "no sentence punctuation just a long run of words that keeps going"
	segments, err := Split(text, 20)
	require.NoError(t, err)

	for _, segment := range segments {
		assert.LessOrEqual(t, len(segment), 20)
		assert.False(t, strings.HasPrefix(segment, " "))
		assert.False(t, strings.HasSuffix(segment, " "))
	}
	assert.Equal(t, stripSpace(text), stripSpace(strings.Join(segments, "")))
}

func TestSplit_HardCutOversizedWord(t *testing.T) {
	word := strings.Repeat("a", 25)
	segments, err := Split(word, 10)
	require.NoError(t, err)

	require.Len(t, segments, 3)
	assert.Equal(t, word, strings.Join(segments, ""))
	for _, segment := range segments {
		assert.LessOrEqual(t, len(segment), 10)
	}
}

// Chunking then concatenating reproduces the input modulo whitespace
// trimmed at boundaries, and every chunk stays within the limit.
func TestSplit_ReconstructionProperty(t *testing.T) {
	inputs := []string{
		"One. Two! Three? Four.",
		"A paragraph with several sentences. Some are short. Others run on for quite a while before ending.",
		strings.Repeat("word ", 200),
		strings.Repeat("x", 57),
		"Mixed: short. " + strings.Repeat("longwordwithoutbreaks", 5) + " trailing tail.",
	}
	limits := []int{1, 7, 25, 100, 4096}

	for _, text := range inputs {
		for _, max := range limits {
			segments, err := Split(text, max)
			require.NoError(t, err)

			for _, segment := range segments {
				assert.LessOrEqual(t, len(segment), max,
					"limit %d input %.20q", max, text)
			}
			assert.Equal(t, stripSpace(text), stripSpace(strings.Join(segments, "")),
				"limit %d input %.20q", max, text)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := "Deterministic chunking. Same input, same limit, same boundaries every time."
	first, err := Split(text, 33)
	require.NoError(t, err)

	for range 5 {
		again, err := Split(text, 33)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestChunkScript_GapFreeOrderedIndices(t *testing.T) {
	script := domain.Script{Lines: []domain.ScriptLine{
		{Speaker: "Ava", Voice: "alloy", Text: "Welcome to the show. Today we cover a lot of ground in a short time."},
		{Speaker: "Sam", Voice: "onyx", Text: "Thanks Ava."},
	}}

	chunks, err := ChunkScript(script, 40)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.LessOrEqual(t, len(chunk.Text), 40)
	}

	// Last chunk belongs to the second speaker's voice.
	assert.Equal(t, "onyx", chunks[len(chunks)-1].Voice)
	assert.Equal(t, "alloy", chunks[0].Voice)
}

func TestChunkScript_InvalidLimit(t *testing.T) {
	script := domain.Script{Lines: []domain.ScriptLine{{Speaker: "Ava", Voice: "alloy", Text: "hi"}}}
	_, err := ChunkScript(script, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
