package gsearch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphriot-garp/gsearch/adapter"
	"github.com/cyphriot-garp/gsearch/internal/orchestrator"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEngineSearchTermMode(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "the contract mentions payment terms")
	writeTestFile(t, filepath.Join(dir, "b.txt"), "nothing relevant in here")

	e := New(adapter.NewOS(), Settings{})
	result := e.Search(SearchParams{
		SearchPaths:       []string{dir},
		ContentSearchTerm: "contract",
		ContentSearchMode: orchestrator.ModeTerm,
	}, nil, nil)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), result.Matches[0].Path)
}

func TestEngineSearchPopulatesExcerpts(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "line one\nthe target word appears here\nline three")

	e := New(adapter.NewOS(), Settings{})
	result := e.Search(SearchParams{
		SearchPaths:       []string{dir},
		ContentSearchTerm: "target",
		ContentSearchMode: orchestrator.ModeTerm,
	}, nil, nil)

	require.Len(t, result.Matches, 1)
	assert.NotEmpty(t, result.Matches[0].Excerpts)
}

func TestEngineSearchBooleanMode(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "apple banana")
	writeTestFile(t, filepath.Join(dir, "b.txt"), "apple only")

	e := New(adapter.NewOS(), Settings{})
	result := e.Search(SearchParams{
		SearchPaths:       []string{dir},
		ContentSearchTerm: "apple AND banana",
		ContentSearchMode: orchestrator.ModeBoolean,
	}, nil, nil)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), result.Matches[0].Path)
}

func TestEngineUpdateSettingsAffectsSubsequentSearches(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "please confirm you will receive the package")

	e := New(adapter.NewOS(), Settings{})
	e.UpdateSettings(true, false, false)

	result := e.Search(SearchParams{
		SearchPaths:       []string{dir},
		ContentSearchTerm: "recieve",
		ContentSearchMode: orchestrator.ModeBoolean,
	}, nil, nil)

	require.Len(t, result.Matches, 1)
}

func TestEngineClearCachesIsTransparent(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "apple")

	e := New(adapter.NewOS(), Settings{})
	params := SearchParams{
		SearchPaths:       []string{dir},
		ContentSearchTerm: "apple",
		ContentSearchMode: orchestrator.ModeTerm,
	}

	before := e.Search(params, nil, nil)
	e.ClearCaches()
	after := e.Search(params, nil, nil)

	assert.Equal(t, len(before.Matches), len(after.Matches))
}

func TestEngineCacheStatsReportsOccupancy(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "apple")

	e := New(adapter.NewOS(), Settings{})
	e.Search(SearchParams{
		SearchPaths:       []string{dir},
		ContentSearchTerm: "apple",
		ContentSearchMode: orchestrator.ModeTerm,
	}, nil, nil)

	stats := e.CacheStats()
	assert.GreaterOrEqual(t, stats.Regex.Size, 0)
}

func TestEngineNoMatchesReturnsEmptySlice(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "nothing here")

	e := New(adapter.NewOS(), Settings{})
	result := e.Search(SearchParams{
		SearchPaths:       []string{dir},
		ContentSearchTerm: "absent",
		ContentSearchMode: orchestrator.ModeTerm,
	}, nil, nil)

	assert.Empty(t, result.Matches)
	assert.False(t, result.WasCancelled)
}
