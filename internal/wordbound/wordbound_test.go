package wordbound

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundariesSkipsShortTokens(t *testing.T) {
	idx := New()
	bounds := idx.Boundaries("a bb ccc")
	require.Len(t, bounds, 2)
	assert.Equal(t, "bb", bounds[0].Word)
	assert.Equal(t, "ccc", bounds[1].Word)
}

func TestBoundariesCached(t *testing.T) {
	idx := New()
	content := "hello world hello"
	first := idx.Boundaries(content)
	second := idx.Boundaries(content)
	assert.Equal(t, first, second)
}

func TestWordIndexDirectHit(t *testing.T) {
	idx := New()
	content := "hello world"
	wi := idx.WordIndex(0, content)
	assert.Equal(t, int32(0), wi)

	wi = idx.WordIndex(6, content)
	assert.Equal(t, int32(1), wi)
}

func TestWordIndexTrailingWhitespace(t *testing.T) {
	idx := New()
	content := "hello   world"
	// offset 6 sits in the whitespace immediately after "hello"
	wi := idx.WordIndex(6, content)
	assert.Equal(t, int32(0), wi)
}

func TestWordIndexNoBoundary(t *testing.T) {
	idx := New()
	content := "   "
	assert.Equal(t, int32(-1), idx.WordIndex(1, content))
}

func TestWordDistance(t *testing.T) {
	idx := New()
	content := "alpha beta gamma"
	d := idx.WordDistance(0, 12, content) // alpha -> gamma
	assert.Equal(t, 2, int(d))
}

func TestWordDistanceUnresolvable(t *testing.T) {
	idx := New()
	content := "   "
	assert.Equal(t, int32(-1), idx.WordDistance(0, 1, content))
}

func TestComputeHandlesLargeContentWithChunkSeams(t *testing.T) {
	idx := New()
	// Build content long enough to force the chunked path, with a known
	// word straddling a chunk boundary.
	filler := strings.Repeat("x", chunkSize-5)
	content := filler + " straddlingword " + strings.Repeat("y", 100)

	bounds := idx.Boundaries(content)
	var found bool
	for _, b := range bounds {
		if b.Word == "straddlingword" {
			found = true
			break
		}
	}
	assert.True(t, found, "word straddling the chunk seam should still be tokenized whole")
}

func TestClearResetsCaches(t *testing.T) {
	idx := New()
	idx.Boundaries("hello world")
	idx.Clear()
	stats := idx.Stats()
	assert.Equal(t, 0, stats.Boundaries.Size)
	assert.Equal(t, 0, stats.Indexes.Size)
}
