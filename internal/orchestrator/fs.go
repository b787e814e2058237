package orchestrator

import (
	"io"
	"time"
)

// FileInfo is the subset of file metadata the Orchestrator filters on.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// FS is the external FS adapter collaborator (§6): discovery, stat, and
// content reads live behind this interface so the core never touches
// the filesystem directly. adapter.OS implements it for local disk; a
// test fake implements it for orchestrator_test.go.
type FS interface {
	// ListFiles walks root, yielding candidate paths whose basename
	// matches one of includeGlobs (extension filters already folded
	// into glob form by the caller), bounded by maxDepth (0 = unlimited).
	// cancelled is polled once per directory entry.
	ListFiles(root string, includeGlobs []string, maxDepth int, cancelled func() bool) ([]string, []PathError)

	// Stat returns metadata for path, or an error if it can't be
	// read. Called in batches of statBatchSize by the Orchestrator.
	Stat(path string) (FileInfo, error)

	// ReadAll returns the full content of path for a single-shot match.
	ReadAll(path string) ([]byte, error)

	// OpenStream returns a reader over path's content for chunked
	// matching. For formats requiring binary decoding (PDF, MSG, ...)
	// the adapter may decode fully up front and return a reader over
	// the decoded text; for plain text it streams the file directly.
	OpenStream(path string) (io.ReadCloser, error)
}

// PathError records a discovery- or stat-time failure against a
// specific path without aborting the run.
type PathError struct {
	Path string
	Err  error
}
