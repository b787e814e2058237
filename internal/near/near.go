// Package near implements the NearEvaluator component (C4): deciding
// whether two atoms occur within k word-tokens of each other, via a
// two-pointer merge over their sorted word-index occurrence lists.
package near

import (
	"regexp"
	"slices"

	"github.com/cyphriot-garp/gsearch/internal/fingerprint"
	"github.com/cyphriot-garp/gsearch/internal/fuzzy"
	"github.com/cyphriot-garp/gsearch/internal/lrucache"
	"github.com/cyphriot-garp/gsearch/internal/rx"
	"github.com/cyphriot-garp/gsearch/internal/wordbound"
)

const (
	resultCacheSize = 2000

	// maxFullContentSize mirrors the spec's MAX_FULL_CONTENT_SIZE default;
	// content larger than this is evaluated chunk-by-chunk.
	maxFullContentSize = 2 * 1024 * 1024
	chunkSize          = 64 * 1024
	avgWordLen         = 32
)

// AtomKind distinguishes the two atom shapes NEAR may nest.
type AtomKind int

const (
	AtomTerm AtomKind = iota
	AtomRegex
)

// Atom is one side of a NEAR(left, right, k) expression.
type Atom struct {
	Kind          AtomKind
	Text          string // Term text, or Regex pattern
	Flags         string // Regex flags only
	CaseSensitive bool   // Term only
	WholeWord     bool   // Term only
}

type cacheKey struct {
	fingerprint string
	left        Atom
	right       Atom
	k           uint32
	fuzzyNear   bool
}

// Evaluator decides NEAR(left, right, k) over content.
type Evaluator struct {
	words   *wordbound.Index
	rx      *rx.Compiler
	fz      *fuzzy.Matcher
	results *lrucache.Cache[cacheKey, bool]
}

// New creates a NEAR evaluator backed by the given shared components so
// that caching and regex compilation stay coherent with the rest of the
// engine.
func New(words *wordbound.Index, compiler *rx.Compiler, fz *fuzzy.Matcher) *Evaluator {
	return &Evaluator{
		words:   words,
		rx:      compiler,
		fz:      fz,
		results: lrucache.New[cacheKey, bool](resultCacheSize, 0),
	}
}

// Clear purges the NEAR result cache.
func (e *Evaluator) Clear() { e.results.Clear() }

// Stats reports cache occupancy and hit rate.
func (e *Evaluator) Stats() lrucache.Stats { return e.results.Stats() }

// Evaluate returns true iff some occurrence of left lies within k
// word-tokens of some occurrence of right. fuzzyNear gates whether Term
// atoms use FuzzyMatcher positions instead of exact positions; Regex atoms
// always use exact, compiled-regex iteration.
func (e *Evaluator) Evaluate(content string, left, right Atom, k uint32, fuzzyNear bool) (bool, error) {
	key := cacheKey{fingerprint: fingerprint.Of(content), left: left, right: right, k: k, fuzzyNear: fuzzyNear}
	if cached, ok := e.results.Get(key); ok {
		return cached, nil
	}

	result, err := e.evaluateUncached(content, left, right, k, fuzzyNear)
	if err != nil {
		return false, err
	}

	e.results.Put(key, result)
	return result, nil
}

func (e *Evaluator) evaluateUncached(content string, left, right Atom, k uint32, fuzzyNear bool) (bool, error) {
	if len(content) > maxFullContentSize {
		return e.evaluateChunked(content, left, right, k, fuzzyNear)
	}
	return e.evaluateFull(content, left, right, k, fuzzyNear)
}

func (e *Evaluator) evaluateFull(content string, left, right Atom, k uint32, fuzzyNear bool) (bool, error) {
	leftPos, err := e.positions(content, left, fuzzyNear)
	if err != nil {
		return false, err
	}
	if len(leftPos) == 0 {
		return false, nil
	}
	rightPos, err := e.positions(content, right, fuzzyNear)
	if err != nil {
		return false, err
	}
	if len(rightPos) == 0 {
		return false, nil
	}

	leftWords := e.toWordIndexes(content, leftPos)
	rightWords := e.toWordIndexes(content, rightPos)
	return twoPointerWithin(leftWords, rightWords, k), nil
}

// evaluateChunked processes content in overlapping chunks whose overlap is
// conservatively bounded by k * avgWordLen characters, short-circuiting on
// the first chunk that answers true.
func (e *Evaluator) evaluateChunked(content string, left, right Atom, k uint32, fuzzyNear bool) (bool, error) {
	overlap := int(k) * avgWordLen
	if overlap < 0 {
		overlap = 0
	}

	runes := []rune(content)
	n := len(runes)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		segStart := start
		if segStart > 0 {
			segStart -= overlap
			if segStart < 0 {
				segStart = 0
			}
		}
		segEnd := end
		if segEnd < n {
			segEnd += overlap
			if segEnd > n {
				segEnd = n
			}
		}

		chunk := string(runes[segStart:segEnd])
		ok, err := e.evaluateFull(chunk, left, right, k, fuzzyNear)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if end >= n {
			break
		}
	}
	return false, nil
}

// positions collects every occurrence of atom in content as rune offsets.
func (e *Evaluator) positions(content string, atom Atom, fuzzyNear bool) ([]int, error) {
	switch atom.Kind {
	case AtomRegex:
		re, err := e.rx.Compile(atom.Text, atom.Flags)
		if err != nil {
			return nil, err
		}
		matches := rx.FindAll(re, content)
		out := make([]int, len(matches))
		for i, m := range matches {
			out[i] = m.Start
		}
		return out, nil
	default:
		if fuzzyNear {
			res := e.fz.Search(content, atom.Text, fuzzy.Options{
				CaseSensitive: atom.CaseSensitive,
				WholeWord:     atom.WholeWord,
				WantPositions: true,
			})
			if !res.Matched {
				return nil, nil
			}
			return res.Positions, nil
		}
		return e.exactTermPositions(content, atom)
	}
}

func (e *Evaluator) exactTermPositions(content string, atom Atom) ([]int, error) {
	pattern := regexp.QuoteMeta(atom.Text)
	if atom.WholeWord {
		pattern = `\b` + pattern + `\b`
	}
	flags := ""
	if !atom.CaseSensitive {
		flags = "i"
	}
	re, err := e.rx.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	matches := rx.FindAll(re, content)
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Start
	}
	return out, nil
}

func (e *Evaluator) toWordIndexes(content string, positions []int) []int32 {
	seen := make(map[int32]struct{}, len(positions))
	out := make([]int32, 0, len(positions))
	for _, p := range positions {
		wi := e.words.WordIndex(p, content)
		if wi < 0 {
			continue
		}
		if _, dup := seen[wi]; dup {
			continue
		}
		seen[wi] = struct{}{}
		out = append(out, wi)
	}
	slices.Sort(out)
	return out
}

// twoPointerWithin returns true iff some pair (a in left, b in right) has
// |a-b| <= k. Both slices must be sorted ascending.
func twoPointerWithin(left, right []int32, k uint32) bool {
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		a, b := left[i], right[j]
		diff := a - b
		if diff < 0 {
			diff = -diff
		}
		if uint32(diff) <= k {
			return true
		}
		if a < b {
			i++
		} else {
			j++
		}
	}
	return false
}
