package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortInput(t *testing.T) {
	assert.Equal(t, []string{"hello world"}, SplitText("  hello world ", 600, 100))
	assert.Nil(t, SplitText("   ", 600, 100))
}

func TestSplitTextChunksAndOverlap(t *testing.T) {
	words := make([]string, 0, 300)
	for i := 0; i < 300; i++ {
		words = append(words, "word")
	}
	text := strings.Join(words, " ")

	chunks := SplitText(text, 600, 100)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 600)
		assert.False(t, strings.HasPrefix(c, "ord"), "chunk should not start mid-word: %q", c[:10])
	}

	// the end of one chunk reappears at the start of the next
	tail := chunks[0][len(chunks[0])-40:]
	assert.Contains(t, chunks[1], strings.TrimSpace(tail))
}

func TestSplitTextCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 700)

	chunks := SplitText(text, 600, 100)
	require.Len(t, chunks, 2)
	assert.Equal(t, 600, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 200, utf8.RuneCountInString(chunks[1]))
}

func TestSplitTextOverlapTooLarge(t *testing.T) {
	chunks := SplitText(strings.Repeat("a", 25), 10, 10)
	assert.Equal(t, []string{"aaaaaaaaaa", "aaaaaaaaaa", "aaaaa"}, chunks)
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseWhitespace(" a \n\t b   c "))
}
