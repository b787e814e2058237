package fileproc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsMatcher(term string) Matcher {
	return func(content string) (bool, error) {
		return strings.Contains(content, term), nil
	}
}

func TestProcessSmallFileMatch(t *testing.T) {
	r := strings.NewReader("the quick brown fox")
	res := Process(r, containsMatcher("brown"), Options{})
	assert.True(t, res.Matched)
	assert.NoError(t, res.Error)
}

func TestProcessSmallFileNoMatch(t *testing.T) {
	r := strings.NewReader("the quick brown fox")
	res := Process(r, containsMatcher("elephant"), Options{})
	assert.False(t, res.Matched)
}

func TestProcessRejectsOversizedKnownSize(t *testing.T) {
	r := strings.NewReader("small")
	res := Process(r, containsMatcher("small"), Options{KnownSize: 1000, MaxFileSize: 100})
	require.Error(t, res.Error)
	assert.True(t, errors.Is(res.Error, ErrFileTooLarge))
}

func TestProcessMatchAcrossChunkBoundaryWithOverlap(t *testing.T) {
	// "needle" straddles a chunk boundary; overlap must carry the tail
	// of the first chunk into the next window.
	chunkSize := 10
	content := strings.Repeat("x", chunkSize-3) + "needle" + strings.Repeat("y", 20)

	r := strings.NewReader(content)
	res := Process(r, containsMatcher("needle"), Options{ChunkSize: chunkSize, Overlap: 6})
	assert.True(t, res.Matched)
}

func TestProcessMissesStraddleWhenOverlapTooSmall(t *testing.T) {
	// The needle spans 6 bytes across the chunk boundary; an overlap
	// window smaller than that span truncates away the leading bytes
	// before the next window is built, so the match is lost for good.
	chunkSize := 10
	content := strings.Repeat("x", chunkSize-3) + "needle" + strings.Repeat("y", 20)

	r := strings.NewReader(content)
	res := Process(r, containsMatcher("needle"), Options{ChunkSize: chunkSize, Overlap: 2})
	assert.False(t, res.Matched)
}

func TestProcessKeepContentSmallFile(t *testing.T) {
	r := strings.NewReader("small content")
	res := Process(r, containsMatcher("nonexistent"), Options{KeepContent: true})
	assert.Equal(t, "small content", res.Content)
}

func TestProcessPropagatesMatcherError(t *testing.T) {
	boom := errors.New("boom")
	r := strings.NewReader("some content")
	res := Process(r, func(string) (bool, error) { return false, boom }, Options{})
	require.Error(t, res.Error)
	assert.True(t, errors.Is(res.Error, boom))
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestProcessPropagatesReadError(t *testing.T) {
	res := Process(errReader{}, containsMatcher("x"), Options{})
	require.Error(t, res.Error)
}
