// Package wordbound implements the WordBoundary component (C1): it
// tokenizes content into word boundaries and answers word-index and
// word-distance queries against them, with fingerprint-keyed caching so
// repeated queries against the same content are cheap.
package wordbound

import (
	"sort"
	"time"
	"unicode"

	"github.com/cyphriot-garp/gsearch/internal/fingerprint"
	"github.com/cyphriot-garp/gsearch/internal/lrucache"
)

// Boundary is a single word token with its inclusive character range.
type Boundary struct {
	Word  string
	Start int
	End   int
}

const (
	boundaryCacheSize = 100
	boundaryCacheTTL  = 10 * time.Minute
	indexCacheSize    = 2000
	indexCacheTTL     = 10 * time.Minute

	// chunkSize is the size, in characters, above which boundary
	// computation proceeds chunk-by-chunk rather than in one pass.
	chunkSize = 50_000
	// seamOverlap re-evaluates a token that may have been split across
	// a chunk boundary.
	seamOverlap = 32
)

type indexKey struct {
	fingerprint string
	offset      int
}

// Index is a cache-backed word tokenizer. Zero value is not usable; use New.
type Index struct {
	boundaries *lrucache.Cache[string, []Boundary]
	indexes    *lrucache.Cache[indexKey, int32]
}

// New creates a word-boundary index with the spec's default cache sizes.
func New() *Index {
	return &Index{
		boundaries: lrucache.New[string, []Boundary](boundaryCacheSize, boundaryCacheTTL),
		indexes:    lrucache.New[indexKey, int32](indexCacheSize, indexCacheTTL),
	}
}

// Clear purges both the boundary and word-index caches.
func (idx *Index) Clear() {
	idx.boundaries.Clear()
	idx.indexes.Clear()
}

// Stats reports combined occupancy and hit rate across both caches.
type Stats struct {
	Boundaries lrucache.Stats
	Indexes    lrucache.Stats
}

// Stats returns a point-in-time snapshot of both internal caches.
func (idx *Index) Stats() Stats {
	return Stats{
		Boundaries: idx.boundaries.Stats(),
		Indexes:    idx.indexes.Stats(),
	}
}

// Boundaries returns the cached (or freshly computed) word boundaries for
// content. The returned slice must not be mutated by callers.
func (idx *Index) Boundaries(content string) []Boundary {
	fp := fingerprint.Of(content)
	if cached, ok := idx.boundaries.Get(fp); ok {
		return cached
	}

	bounds := compute(content)
	idx.boundaries.Put(fp, bounds)
	return bounds
}

// WordIndex returns the word index containing char offset c, or -1 if none
// applies (falling back to the trailing-whitespace attribution rule).
func (idx *Index) WordIndex(c int, content string) int32 {
	fp := fingerprint.Of(content)
	key := indexKey{fingerprint: fp, offset: c}
	if cached, ok := idx.indexes.Get(key); ok {
		return cached
	}

	bounds := idx.Boundaries(content)
	result := lookupWordIndex(bounds, content, c)
	idx.indexes.Put(key, result)
	return result
}

// WordDistance returns |WordIndex(c1) - WordIndex(c2)|, or -1 if either
// offset has no word index.
func (idx *Index) WordDistance(c1, c2 int, content string) int32 {
	i1 := idx.WordIndex(c1, content)
	i2 := idx.WordIndex(c2, content)
	if i1 < 0 || i2 < 0 {
		return -1
	}
	d := i1 - i2
	if d < 0 {
		d = -d
	}
	return d
}

// isWordChar matches the Unicode-aware word class: letters, digits,
// underscore, plus the Latin-1 supplement range.
func isWordChar(r rune) bool {
	if r == '_' {
		return true
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	return r >= 0x00C0 && r <= 0x00FF
}

// compute tokenizes content into word boundaries, dropping single-character
// tokens, chunking content above chunkSize characters with a seam overlap
// so tokens that would otherwise straddle a chunk join are still found.
func compute(content string) []Boundary {
	runes := []rune(content)
	if len(runes) <= chunkSize {
		return tokenize(runes, 0)
	}

	seen := make(map[int]struct{})
	var all []Boundary
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		segStart := start
		if segStart > 0 {
			segStart -= seamOverlap
			if segStart < 0 {
				segStart = 0
			}
		}
		segEnd := end
		if segEnd < len(runes) {
			segEnd += seamOverlap
			if segEnd > len(runes) {
				segEnd = len(runes)
			}
		}

		for _, b := range tokenize(runes[segStart:segEnd], segStart) {
			if _, dup := seen[b.Start]; dup {
				continue
			}
			seen[b.Start] = struct{}{}
			all = append(all, b)
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	return all
}

// tokenize scans a rune slice for maximal word-character runs, offsetting
// reported positions by base (the slice's position within the full content).
func tokenize(runes []rune, base int) []Boundary {
	var bounds []Boundary
	i := 0
	for i < len(runes) {
		if !isWordChar(runes[i]) {
			i++
			continue
		}
		start := i
		for i < len(runes) && isWordChar(runes[i]) {
			i++
		}
		end := i - 1
		if end > start { // drop single-character tokens
			bounds = append(bounds, Boundary{
				Word:  string(runes[start : end+1]),
				Start: base + start,
				End:   base + end,
			})
		}
	}
	return bounds
}

// lookupWordIndex implements the direct-hit / trailing-whitespace rule
// described in spec.md §3. Uses binary search above 20 boundaries.
func lookupWordIndex(bounds []Boundary, content string, c int) int32 {
	if len(bounds) == 0 {
		return -1
	}

	var i int
	if len(bounds) > 20 {
		i = sort.Search(len(bounds), func(i int) bool { return bounds[i].Start > c }) - 1
	} else {
		i = -1
		for j, b := range bounds {
			if b.Start > c {
				break
			}
			i = j
		}
	}

	if i >= 0 && i < len(bounds) && c >= bounds[i].Start && c <= bounds[i].End {
		return int32(i)
	}
	if i < 0 {
		return -1
	}

	// Trailing-whitespace attribution: only whitespace may separate the
	// offset from the end of boundary i.
	runes := []rune(content)
	for p := bounds[i].End + 1; p < c; p++ {
		if p < 0 || p >= len(runes) || !unicode.IsSpace(runes[p]) {
			return -1
		}
	}
	return int32(i)
}
