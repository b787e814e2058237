// Package rx implements the RegexCompiler component (C3): compiling and
// caching regular expressions, and iterating matches with non-overlapping,
// "global" semantics without ever sharing a mutable cursor across callers.
//
// Flags supported are the subset the spec names: i (case-insensitive),
// m (multiline ^/$), s (dot matches newline), u (Unicode — always on,
// since Go's regexp/syntax is Unicode-aware by default).
//
// Stdlib regexp (RE2) is used rather than a backtracking engine: spec.md
// §4.3 requires the compiler to "forbid constructs the host engine cannot
// execute linearly", and RE2 guarantees linear-time matching by
// construction, so there is nothing advisory left to enforce. See
// DESIGN.md for why stdlib regexp is used rather than regexp2 or
// coregex.
package rx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cyphriot-garp/gsearch/internal/lrucache"
)

const (
	cacheSize = 200
)

type key struct {
	pattern string
	flags   string
}

// Compiler compiles and caches *regexp.Regexp by (pattern, flags).
type Compiler struct {
	cache *lrucache.Cache[key, *regexp.Regexp]
}

// New creates a regex compiler with the spec's default cache size.
func New() *Compiler {
	return &Compiler{cache: lrucache.New[key, *regexp.Regexp](cacheSize, 0)}
}

// Compile compiles pattern with the given flag string (any subset of
// "ims", "u" is accepted but a no-op). Returns a CompileError on invalid
// syntax.
func (c *Compiler) Compile(pattern, flags string) (*regexp.Regexp, error) {
	k := key{pattern: pattern, flags: normalizeFlags(flags)}
	if re, ok := c.cache.Get(k); ok {
		return re, nil
	}

	wrapped := wrapFlags(pattern, k.flags)
	re, err := regexp.Compile(wrapped)
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Flags: flags, Err: err}
	}

	c.cache.Put(k, re)
	return re, nil
}

// MustCompile panics on error; intended for statically-known patterns.
func (c *Compiler) MustCompile(pattern, flags string) *regexp.Regexp {
	re, err := c.Compile(pattern, flags)
	if err != nil {
		panic(err)
	}
	return re
}

// Clear purges the compiled-regex cache.
func (c *Compiler) Clear() { c.cache.Clear() }

// Stats reports cache occupancy and hit rate.
func (c *Compiler) Stats() lrucache.Stats { return c.cache.Stats() }

// normalizeFlags drops 'u' (always on) and sorts the remainder so that
// equivalent flag sets share one cache key regardless of input order.
func normalizeFlags(flags string) string {
	var b strings.Builder
	for _, f := range "ims" {
		if strings.ContainsRune(flags, f) {
			b.WriteRune(f)
		}
	}
	return b.String()
}

func wrapFlags(pattern, flags string) string {
	if flags == "" {
		return pattern
	}
	return fmt.Sprintf("(?%s)%s", flags, pattern)
}

// CompileError is a caller-side error: it is surfaced at compile time
// (query-compile or NEAR-atom-compile), never during Match/Iterate.
type CompileError struct {
	Pattern string
	Flags   string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("regex compile error for /%s/%s: %v", e.Pattern, e.Flags, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Match represents one non-overlapping occurrence of a compiled pattern.
type Match struct {
	Start int // inclusive rune offset
	End   int // exclusive rune offset
}

// FindAll returns every non-overlapping match of re in content, converting
// regexp's byte offsets (UTF-8) to rune offsets so they compose with the
// word-boundary component's rune-indexed positions.
func FindAll(re *regexp.Regexp, content string) []Match {
	byteIdx := re.FindAllStringIndex(content, -1)
	if len(byteIdx) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(byteIdx))
	runeOffset := 0
	byteOffset := 0
	for _, pair := range byteIdx {
		runeOffset += len([]rune(content[byteOffset:pair[0]]))
		start := runeOffset
		runeOffset += len([]rune(content[pair[0]:pair[1]]))
		end := runeOffset
		byteOffset = pair[1]
		matches = append(matches, Match{Start: start, End: end})
	}
	return matches
}
