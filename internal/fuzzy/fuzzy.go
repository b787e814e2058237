// Package fuzzy implements the FuzzyMatcher component (C2): approximate
// substring search with an exact-match fast path, a bounded-edit-distance
// word scan for large content, and a Fuse.js-style normalized
// edit-distance threshold search for medium content, all behind a result
// cache.
package fuzzy

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/cyphriot-garp/gsearch/internal/fingerprint"
	"github.com/cyphriot-garp/gsearch/internal/lrucache"
)

const (
	resultCacheSize = 2000

	largeContentThreshold  = 10_000
	hugeContentThreshold   = 50_000
	sampleWindowCount      = 10
	sampleWindowSize       = 5_000
	sampleCandidateBudget  = 1_000
	wordStraddleSeamChars  = 32
	minTermLenForFuzzyScan = 3
)

// Options controls how a term is matched.
type Options struct {
	CaseSensitive bool
	WholeWord     bool
	// WantPositions requests that the matcher keep scanning after the
	// first hit so that every occurrence is reported. When false the
	// matcher may short-circuit on the first match.
	WantPositions bool
}

// Result is the outcome of a fuzzy search.
type Result struct {
	Matched        bool
	Score          float64 // 0 = exact, higher = looser; see package docs
	Positions      []int   // rune offsets into content
	ProcessingTime time.Duration
}

type cacheKey struct {
	fingerprint string
	term        string
	opts        Options
}

// Matcher is a cache-backed fuzzy matcher. Safe for concurrent use.
type Matcher struct {
	results *lrucache.Cache[cacheKey, Result]
}

// New creates a fuzzy matcher with the spec's default result-cache size.
func New() *Matcher {
	return &Matcher{results: lrucache.New[cacheKey, Result](resultCacheSize, 0)}
}

// Clear purges the result cache.
func (m *Matcher) Clear() { m.results.Clear() }

// Stats reports cache occupancy and hit rate.
func (m *Matcher) Stats() lrucache.Stats { return m.results.Stats() }

// Search decides whether term approximately occurs in content.
func (m *Matcher) Search(content, term string, opts Options) Result {
	start := time.Now()

	if content == "" || term == "" {
		return Result{Matched: false, Score: 1}
	}

	if len(term) < minTermLenForFuzzyScan {
		res := exactSearch(content, term, opts)
		res.ProcessingTime = time.Since(start)
		return res
	}

	key := cacheKey{fingerprint: fingerprint.Of(content), term: normalizeKey(term, opts), opts: opts}
	if cached, ok := m.results.Get(key); ok {
		cached.ProcessingTime = time.Since(start)
		return cached
	}

	res := exactSearch(content, term, opts)
	if !res.Matched {
		switch {
		case len(content) > largeContentThreshold:
			res = wordScanSearch(content, term, opts)
		default:
			res = engineSearch(content, term, opts)
		}
	}

	m.results.Put(key, res)
	res.ProcessingTime = time.Since(start)
	return res
}

func normalizeKey(term string, opts Options) string {
	if opts.CaseSensitive {
		return term
	}
	return strings.ToLower(term)
}

// exactSearch is the fast path: a normalized substring scan, advancing by
// term length each step, so only non-overlapping occurrences are reported.
func exactSearch(content, term string, opts Options) Result {
	hayRunes := []rune(normalize(content, opts.CaseSensitive))
	needleRunes := []rune(normalize(term, opts.CaseSensitive))
	if len(needleRunes) == 0 {
		return Result{Matched: false, Score: 1}
	}

	hay := string(hayRunes)
	needle := string(needleRunes)

	var wordRe *regexp.Regexp
	if opts.WholeWord {
		wordRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(needle) + `\b`)
	}

	var positions []int
	runeOffset := 0
	byteOffset := 0
	for {
		idx := strings.Index(hay[byteOffset:], needle)
		if idx < 0 {
			break
		}
		absByte := byteOffset + idx
		runeOffset += len([]rune(hay[byteOffset:absByte]))

		ok := true
		if wordRe != nil {
			end := absByte + len(needle)
			ok = wordRe.MatchString(hay[max(0, absByte-1):min(len(hay), end+1)])
		}
		if ok {
			positions = append(positions, runeOffset)
		}

		byteOffset = absByte + len(needle)
		runeOffset += len([]rune(needle))
		if !opts.WantPositions && len(positions) > 0 {
			break
		}
	}

	if len(positions) == 0 {
		return Result{Matched: false, Score: 1}
	}
	return Result{Matched: true, Score: 0, Positions: positions}
}

func normalize(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// wordScanSearch implements the §4.2.1 word-scan Levenshtein variant used
// for content above largeContentThreshold characters.
func wordScanSearch(content, term string, opts Options) Result {
	t := len([]rune(term))
	budget := int(math.Floor(float64(t) * 0.3))
	minLen := int(math.Floor(float64(t) * 0.7))
	maxLen := int(math.Ceil(float64(t) * 1.3))

	normTerm := normalize(term, opts.CaseSensitive)
	termRunes := []rune(normTerm)
	firstC, lastC := termRunes[0], termRunes[len(termRunes)-1]

	var wordRe *regexp.Regexp
	if opts.WholeWord {
		wordRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(normTerm) + `\b`)
	}

	if len(content) > hugeContentThreshold {
		return sampledScan(content, normTerm, budget, minLen, maxLen, firstC, lastC, opts, wordRe)
	}

	normContent := normalize(content, opts.CaseSensitive)
	words := uniqueWords(normContent)

	var positions []int
	for _, w := range words {
		wr := []rune(w)
		if len(wr) < minLen || len(wr) > maxLen {
			continue
		}
		if wr[0] != firstC && wr[len(wr)-1] != lastC {
			continue
		}
		if lenDiffExceeds(len(wr), len(termRunes), budget) {
			continue
		}
		if levenshtein.ComputeDistance(w, normTerm) > budget {
			continue
		}
		if wordRe != nil && !wordRe.MatchString(w) {
			continue
		}

		pos := strings.Index(normContent, w)
		if pos < 0 {
			continue
		}
		positions = append(positions, len([]rune(normContent[:pos])))
		if !opts.WantPositions {
			break
		}
	}

	if len(positions) == 0 {
		return Result{Matched: false, Score: 1}
	}
	return Result{Matched: true, Score: 0.3, Positions: positions}
}

func lenDiffExceeds(a, b, budget int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d > budget
}

// uniqueWords splits on whitespace and de-duplicates, preserving first
// occurrence order.
func uniqueWords(content string) []string {
	fields := strings.Fields(content)
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// sampledScan draws sampleWindowCount windows of sampleWindowSize characters
// spaced uniformly across content, stopping after collecting
// sampleCandidateBudget candidate words, per §4.2.1's huge-content rule.
func sampledScan(content, normTerm string, budget, minLen, maxLen int, firstC, lastC rune, opts Options, wordRe *regexp.Regexp) Result {
	runes := []rune(content)
	n := len(runes)
	if !opts.CaseSensitive {
		content = strings.ToLower(content)
		runes = []rune(content)
	}

	stride := n / sampleWindowCount
	if stride < sampleWindowSize {
		stride = sampleWindowSize
	}

	candidates := 0
	for w := 0; w < sampleWindowCount; w++ {
		start := w * stride
		if start >= n {
			break
		}
		end := start + sampleWindowSize
		if end > n {
			end = n
		}
		// Seam overlap closes the gap where a word straddles the window edge.
		segStart := start
		if segStart > 0 {
			segStart -= wordStraddleSeamChars
			if segStart < 0 {
				segStart = 0
			}
		}
		segment := string(runes[segStart:end])

		for _, word := range strings.Fields(segment) {
			if candidates >= sampleCandidateBudget {
				break
			}
			candidates++

			wr := []rune(word)
			if len(wr) < minLen || len(wr) > maxLen {
				continue
			}
			if wr[0] != firstC && wr[len(wr)-1] != lastC {
				continue
			}
			if lenDiffExceeds(len(wr), len([]rune(normTerm)), budget) {
				continue
			}
			if levenshtein.ComputeDistance(word, normTerm) > budget {
				continue
			}
			if wordRe != nil && !wordRe.MatchString(word) {
				continue
			}
			return Result{Matched: true, Score: 0.5}
		}
		if candidates >= sampleCandidateBudget {
			break
		}
	}

	return Result{Matched: false, Score: 1}
}

// fuseThreshold mirrors Fuse.js's default match threshold: a candidate is
// accepted when its edit distance normalized by the longer of the two
// strings is at or below this value. 0 demands an exact match, 1 matches
// anything.
const fuseThreshold = 0.4

// engineSearch implements the §4.2 step-5 medium-content path, reproducing
// Fuse.js's bounded normalized edit-distance matcher (threshold/distance
// semantics) rather than an ordered-subsequence scorer: every word in
// content is scored by Levenshtein distance normalized against the
// longer of the word and the term, and the closest word at or under
// fuseThreshold wins.
func engineSearch(content, term string, opts Options) Result {
	normContent := normalize(content, opts.CaseSensitive)
	normTerm := normalize(term, opts.CaseSensitive)
	termRunes := []rune(normTerm)

	words := uniqueWords(normContent)
	if len(words) == 0 {
		return Result{Matched: false, Score: 1}
	}

	var wordRe *regexp.Regexp
	if opts.WholeWord {
		wordRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(normTerm) + `\b`)
	}

	bestScore := math.Inf(1)
	bestWord := ""
	for _, w := range words {
		wr := []rune(w)
		longest := max(len(wr), len(termRunes))
		if longest == 0 {
			continue
		}
		dist := levenshtein.ComputeDistance(w, normTerm)
		score := float64(dist) / float64(longest)
		if score > fuseThreshold || score >= bestScore {
			continue
		}
		if wordRe != nil && !wordRe.MatchString(w) {
			continue
		}
		bestScore = score
		bestWord = w
	}

	if bestWord == "" {
		return Result{Matched: false, Score: 1}
	}

	pos := strings.Index(normContent, bestWord)
	var positions []int
	if pos >= 0 {
		positions = []int{len([]rune(normContent[:pos]))}
	}
	return Result{Matched: true, Score: bestScore, Positions: positions}
}
