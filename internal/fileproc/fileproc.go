// Package fileproc implements the FileProcessor component (C6): stream
// content in fixed-size chunks with an overlap window sized to the
// widest span the matcher can observe, feeding each (overlap‖chunk)
// window to the matcher and stopping on the first positive answer.
package fileproc

import (
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultChunkSize mirrors the spec's CHUNK_SIZE default.
	DefaultChunkSize = 64 * 1024
	// DefaultMaxFileSize mirrors the spec's max_file_size default,
	// matching the teacher's WordMatcher.maxFileSize.
	DefaultMaxFileSize = 50 * 1024 * 1024
)

// ErrFileTooLarge is returned (wrapped into Result.Error) when a file
// exceeds Options.MaxFileSize before any read beyond stat.
var ErrFileTooLarge = errors.New("file too large")

// Matcher is the minimal surface FileProcessor needs from a compiled
// predicate: decide whether content matches, nothing else.
type Matcher func(content string) (bool, error)

// Options configures a single Process call.
type Options struct {
	ChunkSize   int
	MaxFileSize int64
	// KnownSize is the file's on-disk size, when known, checked against
	// MaxFileSize before any chunk is read. Zero skips the check
	// (content already bounded, e.g. pre-extracted text).
	KnownSize int64
	// Overlap is the number of bytes of trailing chunk content retained
	// across chunk boundaries, derived by the caller from the AST (max
	// NEAR-span in chars, longest regex/term length, fuzzy sampling
	// window). Zero disables overlap.
	Overlap int
	// KeepContent requests that Result.Content be populated when the
	// entire stream fit in a single chunk (small-file case). Ignored
	// for larger, genuinely-streamed content.
	KeepContent bool
}

func (o Options) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

func (o Options) maxFileSize() int64 {
	if o.MaxFileSize > 0 {
		return o.MaxFileSize
	}
	return DefaultMaxFileSize
}

// Result is the outcome of processing one file.
type Result struct {
	Matched bool
	Content string // populated only when Options.KeepContent and content fit in one chunk
	Error   error
}

// Process streams r through matcher per the spec's chunking contract: at
// most Overlap+ChunkSize bytes of content are alive at any time. r is
// read to completion or until matcher reports a positive match,
// whichever comes first; source is closed by the caller.
func Process(r io.Reader, matcher Matcher, opts Options) Result {
	if opts.KnownSize > 0 && opts.KnownSize > opts.maxFileSize() {
		return Result{Error: ErrFileTooLarge}
	}

	chunkSize := opts.chunkSize()
	overlap := max(0, opts.Overlap)

	buf := make([]byte, chunkSize)
	var tail []byte
	var kept []byte
	keepingFull := opts.KeepContent

	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			window := make([]byte, 0, len(tail)+n)
			window = append(window, tail...)
			window = append(window, buf[:n]...)

			if keepingFull {
				if len(kept)+n > chunkSize {
					keepingFull = false
					kept = nil
				} else {
					kept = append(kept, buf[:n]...)
				}
			}

			content := string(window)
			matched, err := matcher(content)
			if err != nil {
				return Result{Error: err}
			}
			if matched {
				result := Result{Matched: true}
				if keepingFull && readErr == io.EOF {
					result.Content = string(kept)
				}
				return result
			}

			switch {
			case overlap == 0:
				tail = nil
			case len(window) > overlap:
				tail = append([]byte(nil), window[len(window)-overlap:]...)
			default:
				tail = append([]byte(nil), window...)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Result{Error: fmt.Errorf("fileproc: read: %w", readErr)}
		}
	}

	result := Result{Matched: false}
	if keepingFull {
		result.Content = string(kept)
	}
	return result
}
