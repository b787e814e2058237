package adapter

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListFilesWalksTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "b")

	o := NewOS()
	files, errs := o.ListFiles(dir, nil, 0, nil)
	assert.Empty(t, errs)
	assert.Len(t, files, 2)
}

func TestListFilesSkipsVCSDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, ".git", "config"), "x")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "index.js"), "x")

	o := NewOS()
	files, _ := o.ListFiles(dir, nil, 0, nil)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), files[0])
}

func TestListFilesRespectsMaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.txt"), "a")
	writeFile(t, filepath.Join(dir, "a", "b", "deep.txt"), "b")

	o := NewOS()
	files, _ := o.ListFiles(dir, nil, 1, nil)
	for _, f := range files {
		assert.NotContains(t, f, "deep.txt")
	}
}

func TestListFilesHonorsExtensionGlobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "b.md"), "b")

	o := NewOS()
	files, _ := o.ListFiles(dir, []string{"*.txt"}, 0, nil)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "a.txt"), files[0])
}

func TestListFilesStopsOnCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, filepath.Join(dir, string(rune('a'+i))+".txt"), "x")
	}

	o := NewOS()
	files, _ := o.ListFiles(dir, nil, 0, func() bool { return true })
	assert.Empty(t, files)
}

func TestStatReturnsMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "hello")

	o := NewOS()
	info, err := o.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
}

func TestReadAllPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "plain text content")

	o := NewOS()
	data, err := o.ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, "plain text content", string(data))
}

func TestReadAllDecodesHTML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	writeFile(t, path, "<p>hello</p>")

	o := NewOS()
	data, err := o.ReadAll(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOpenStreamPlainTextStreamsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "stream me")

	o := NewOS()
	rc, err := o.OpenStream(path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "stream me", string(data))
}

func TestOpenStreamDecodesExtractableFormatUpFront(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	writeFile(t, path, "<p>decoded</p>")

	o := NewOS()
	rc, err := o.OpenStream(path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "decoded", string(data))
}
