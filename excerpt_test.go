package gsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanContentStripsHTMLAndEntities(t *testing.T) {
	got := CleanContent("<p>Hello&nbsp;World</p>")
	assert.Equal(t, "Hello World", got)
}

func TestCleanContentCollapsesWhitespace(t *testing.T) {
	got := CleanContent("line one\n\n\nline   two")
	assert.Equal(t, "line one line two", got)
}

func TestExtractExcerptsFindsMatchingLine(t *testing.T) {
	content := "intro line\nthe target word is here\nclosing line"
	excerpts := ExtractExcerpts(content, []string{"target"}, 3)
	assert.NotEmpty(t, excerpts)
	assert.Contains(t, excerpts[0], "target")
}

func TestExtractExcerptsRespectsMaxCount(t *testing.T) {
	content := "alpha match one\nbeta match two\ngamma match three\ndelta match four"
	excerpts := ExtractExcerpts(content, []string{"match"}, 2)
	assert.LessOrEqual(t, len(excerpts), 2)
}

func TestExtractExcerptsSkipsJunkLines(t *testing.T) {
	content := "Content-Type: text/plain; target inside header is ignored\nreal target sentence about the topic"
	excerpts := ExtractExcerpts(content, []string{"target"}, 5)
	for _, e := range excerpts {
		assert.NotContains(t, e, "Content-Type")
	}
}

func TestExtractExcerptsNoMatchReturnsEmpty(t *testing.T) {
	content := "nothing relevant in this text at all"
	excerpts := ExtractExcerpts(content, []string{"absent"}, 3)
	assert.Empty(t, excerpts)
}

func TestContainsWholeWordCI(t *testing.T) {
	assert.True(t, containsWholeWordCI("The Cat sat", "cat"))
	assert.False(t, containsWholeWordCI("category theory", "cat"))
}
