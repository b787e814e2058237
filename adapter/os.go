package adapter

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cyphriot-garp/gsearch/internal/orchestrator"
)

// skipDirs mirrors the teacher's FileWalker.shouldSkipDir table: VCS and
// build-tool directories that are never worth descending into.
var skipDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, ".vscode": true, ".idea": true,
	"__pycache__": true, ".pytest_cache": true,
	"vendor": true, "target": true, "build": true, "dist": true,
	".next": true, ".nuxt": true, "coverage": true,
}

// OS is a local-disk orchestrator.FS backed by filepath.WalkDir, with
// binary-format content decoded through a Registry so EML/MBOX/MSG/PDF
// files are searchable like any text file.
type OS struct {
	registry *Registry
}

// NewOS builds an OS adapter with the default extractor registry wired in.
func NewOS() *OS {
	return &OS{registry: NewRegistry()}
}

func (o *OS) ListFiles(root string, includeGlobs []string, maxDepth int, cancelled func() bool) ([]string, []orchestrator.PathError) {
	var files []string
	var errs []orchestrator.PathError

	rootDepth := strings.Count(filepath.ToSlash(root), "/")

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if cancelled != nil && cancelled() {
			return filepath.SkipAll
		}
		if err != nil {
			errs = append(errs, orchestrator.PathError{Path: path, Err: err})
			return nil
		}

		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if maxDepth > 0 {
				depth := strings.Count(filepath.ToSlash(path), "/") - rootDepth
				if depth >= maxDepth {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if len(includeGlobs) > 0 && !matchesAnyGlob(filepath.Base(path), includeGlobs) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, errs
}

func matchesAnyGlob(name string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, name); ok {
			return true
		}
	}
	return false
}

func (o *OS) Stat(path string) (orchestrator.FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return orchestrator.FileInfo{}, err
	}
	return orchestrator.FileInfo{
		Path:    path,
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
		IsDir:   stat.IsDir(),
	}, nil
}

// ReadAll reads path and, when its extension has a registered Extractor,
// decodes it to plain text; otherwise returns the raw bytes unchanged.
func (o *OS) ReadAll(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(path)
	if extractor := o.registry.For(ext); extractor != nil {
		text, err := extractor.ExtractText(data)
		if err != nil {
			return data, nil
		}
		return []byte(text), nil
	}
	return data, nil
}

// OpenStream returns a reader over path's searchable content. Plain text
// files stream directly off disk; formats with a registered Extractor
// are decoded fully up front (extraction is inherently whole-file) and
// handed back as a reader over the decoded text, so FileProcessor's
// chunking still applies uniformly on the far side.
func (o *OS) OpenStream(path string) (io.ReadCloser, error) {
	ext := filepath.Ext(path)
	if extractor := o.registry.For(ext); extractor != nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text, err := extractor.ExtractText(data)
		if err != nil {
			text = string(data)
		}
		return io.NopCloser(strings.NewReader(text)), nil
	}
	return os.Open(path)
}
