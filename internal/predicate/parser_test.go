package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleTerm(t *testing.T) {
	node, err := Parse("hello", ParseMode{})
	require.NoError(t, err)
	an, ok := node.(AtomNode)
	require.True(t, ok)
	term, ok := an.Atom.(Term)
	require.True(t, ok)
	assert.Equal(t, "hello", term.Text)
}

func TestParseAndPrecedesOr(t *testing.T) {
	// "a OR b AND c" should parse as Or(a, And(b, c))
	node, err := Parse("a OR b AND c", ParseMode{})
	require.NoError(t, err)
	or, ok := node.(Or)
	require.True(t, ok)
	_, leftIsAtom := or.Left.(AtomNode)
	assert.True(t, leftIsAtom)
	and, ok := or.Right.(And)
	assert.True(t, ok)
	_ = and
}

func TestParseNotBindsTighterThanAnd(t *testing.T) {
	node, err := Parse("a AND NOT b", ParseMode{})
	require.NoError(t, err)
	and, ok := node.(And)
	require.True(t, ok)
	_, ok = and.Right.(Not)
	assert.True(t, ok)
}

func TestParseParentheses(t *testing.T) {
	node, err := Parse("(a OR b) AND c", ParseMode{})
	require.NoError(t, err)
	and, ok := node.(And)
	require.True(t, ok)
	_, ok = and.Left.(Or)
	assert.True(t, ok)
}

func TestParseNear(t *testing.T) {
	node, err := Parse(`NEAR(foo, bar, 5)`, ParseMode{})
	require.NoError(t, err)
	an, ok := node.(AtomNode)
	require.True(t, ok)
	near, ok := an.Atom.(Near)
	require.True(t, ok)
	assert.Equal(t, uint32(5), near.K)
}

func TestParseNearRejectsNestedNear(t *testing.T) {
	_, err := Parse(`NEAR(NEAR(a,b,1), c, 2)`, ParseMode{})
	require.Error(t, err)
}

func TestParseRegexLiteral(t *testing.T) {
	node, err := Parse(`/foo.*bar/i`, ParseMode{})
	require.NoError(t, err)
	an, ok := node.(AtomNode)
	require.True(t, ok)
	re, ok := an.Atom.(Regex)
	require.True(t, ok)
	assert.Equal(t, "foo.*bar", re.Pattern)
	assert.Equal(t, "i", re.Flags)
}

func TestParseUnbalancedParenIsError(t *testing.T) {
	_, err := Parse("(a AND b", ParseMode{})
	require.Error(t, err)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestParseCaseInsensitiveKeywords(t *testing.T) {
	node, err := Parse("a and b", ParseMode{})
	require.NoError(t, err)
	_, ok := node.(And)
	assert.True(t, ok)
}

func TestParseQuotedPhrase(t *testing.T) {
	node, err := Parse(`"hello world"`, ParseMode{})
	require.NoError(t, err)
	an := node.(AtomNode)
	term := an.Atom.(Term)
	assert.Equal(t, "hello world", term.Text)
}
