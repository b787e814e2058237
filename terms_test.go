package gsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphriot-garp/gsearch/internal/predicate"
)

func TestLiteralTermsCollectsFromBooleanTree(t *testing.T) {
	node, err := predicate.Parse("apple AND (banana OR NOT cherry)", predicate.ParseMode{})
	require.NoError(t, err)

	terms := literalTerms(node)
	assert.ElementsMatch(t, []string{"apple", "banana", "cherry"}, terms)
}

func TestLiteralTermsSkipsRegex(t *testing.T) {
	node, err := predicate.Parse(`apple AND /foo.*bar/`, predicate.ParseMode{})
	require.NoError(t, err)

	terms := literalTerms(node)
	assert.Equal(t, []string{"apple"}, terms)
}

func TestLiteralTermsNearContributesNothing(t *testing.T) {
	node, err := predicate.Parse("NEAR(alpha, beta, 3)", predicate.ParseMode{})
	require.NoError(t, err)

	terms := literalTerms(node)
	assert.Empty(t, terms)
}
