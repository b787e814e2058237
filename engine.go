// Package gsearch is the public API of the filesystem content-search
// engine: compile a query once, evaluate it against a tree of files
// under a bounded-concurrency orchestrator, and get back matched paths
// with excerpts. Internals (word boundaries, fuzzy matching, regex
// compilation, NEAR evaluation, predicate parsing, chunked file
// processing, and discovery/scheduling) live under internal/ and are
// reused across every search() call so their LRU caches stay warm.
package gsearch

import (
	"sync"

	"github.com/cyphriot-garp/gsearch/internal/fuzzy"
	"github.com/cyphriot-garp/gsearch/internal/lrucache"
	"github.com/cyphriot-garp/gsearch/internal/near"
	"github.com/cyphriot-garp/gsearch/internal/orchestrator"
	"github.com/cyphriot-garp/gsearch/internal/predicate"
	"github.com/cyphriot-garp/gsearch/internal/rx"
	"github.com/cyphriot-garp/gsearch/internal/wordbound"
)

// Settings are the mutable engine-wide knobs snapshotted at the start of
// every search() call, per spec.md §5 ("no mutable global configuration
// is read during a run").
type Settings struct {
	FuzzyBooleanEnabled bool
	FuzzyNearEnabled    bool
	WholeWordMatching   bool
}

// Logger matches log.Printf's signature. The zero value is a no-op,
// mirroring the teacher's SearchEngine.Silent flag in search/engine.go.
type Logger func(format string, args ...any)

func noopLogger(string, ...any) {}

// Engine is the engine-wide, thread-safe entry point. Construct one with
// New and reuse it across searches so caches and compiled regexes stay
// warm.
type Engine struct {
	mu       sync.RWMutex
	settings Settings
	logger   Logger

	fs       orchestrator.FS
	words    *wordbound.Index
	fz       *fuzzy.Matcher
	rxc      *rx.Compiler
	nearE    *near.Evaluator
	compiler *predicate.Compiler
	orch     *orchestrator.Orchestrator
}

// New builds an Engine backed by fs, with the given initial settings.
func New(fs orchestrator.FS, settings Settings) *Engine {
	words := wordbound.New()
	fz := fuzzy.New()
	rxc := rx.New()
	nearE := near.New(words, rxc, fz)
	compiler := predicate.NewCompiler(rxc, fz, nearE)

	e := &Engine{
		settings: settings,
		logger:   noopLogger,
		fs:       fs,
		words:    words,
		fz:       fz,
		rxc:      rxc,
		nearE:    nearE,
		compiler: compiler,
	}
	e.orch = orchestrator.New(fs, compiler)
	return e
}

// SetLogger installs a printf-style logger; pass nil to go silent again.
func (e *Engine) SetLogger(l Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = noopLogger
	}
	e.logger = l
}

// UpdateSettings snapshots new engine-wide defaults for subsequent
// Search calls; in-flight searches keep whatever they already snapshotted.
func (e *Engine) UpdateSettings(fuzzyBoolean, fuzzyNear, wholeWord bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = Settings{
		FuzzyBooleanEnabled: fuzzyBoolean,
		FuzzyNearEnabled:    fuzzyNear,
		WholeWordMatching:   wholeWord,
	}
}

// ClearCaches purges every internal LRU cache (word boundaries, fuzzy
// results, compiled regexes, NEAR results). Per spec.md §8's cache
// transparency invariant, this never changes the outcome of a search,
// only its cost.
func (e *Engine) ClearCaches() {
	e.words.Clear()
	e.fz.Clear()
	e.rxc.Clear()
	e.nearE.Clear()
}

// Stats aggregates cache occupancy/hit-rate across every internal cache.
type Stats struct {
	WordBoundaries wordbound.Stats
	Fuzzy          lrucache.Stats
	Regex          lrucache.Stats
	Near           lrucache.Stats
}

// CacheStats reports current occupancy and hit rate for every cache the
// engine maintains.
func (e *Engine) CacheStats() Stats {
	return Stats{
		WordBoundaries: e.words.Stats(),
		Fuzzy:          e.fz.Stats(),
		Regex:          e.rxc.Stats(),
		Near:           e.nearE.Stats(),
	}
}

// SearchParams is the public request shape; it forwards directly to
// internal/orchestrator.Params, which mirrors spec.md §6's table.
type SearchParams = orchestrator.Params

// SearchResult is the public response shape: matched files plus the
// run's error/cancellation accounting.
type SearchResult struct {
	Matches           []MatchedFile
	ErrorsEncountered int
	PathErrors        []string
	FileReadErrors    []orchestrator.FileReadError
	WasCancelled      bool
}

// MatchedFile is one file that satisfied the compiled predicate, with
// excerpts extracted around its literal search terms when available.
type MatchedFile struct {
	Path     string
	Size     int64
	Excerpts []string
}

// Search runs params against the engine's FS adapter. progress and
// cancelled may be nil. Settings are snapshotted once at entry.
func (e *Engine) Search(params SearchParams, progress func(orchestrator.ProgressEvent), cancelled func() bool) SearchResult {
	e.mu.RLock()
	settings := e.settings
	e.mu.RUnlock()

	if params.ContentSearchTerm != "" {
		params.FuzzySearchBooleanEnabled = params.FuzzySearchBooleanEnabled || settings.FuzzyBooleanEnabled
		params.FuzzySearchNearEnabled = params.FuzzySearchNearEnabled || settings.FuzzyNearEnabled
		if !params.WholeWordMatching {
			params.WholeWordMatching = settings.WholeWordMatching
		}
	}

	result := e.orch.Search(params, progress, cancelled)

	var terms []string
	if params.ContentSearchTerm != "" && params.ContentSearchMode == orchestrator.ModeBoolean {
		mode := predicate.ParseMode{CaseSensitive: params.CaseSensitive, WholeWord: params.WholeWordMatching}
		if node, err := predicate.Parse(params.ContentSearchTerm, mode); err == nil {
			terms = literalTerms(node)
		}
	} else if params.ContentSearchMode == orchestrator.ModeTerm {
		terms = []string{params.ContentSearchTerm}
	}

	matches := make([]MatchedFile, 0, len(result.Matches))
	for _, m := range result.Matches {
		mf := MatchedFile{Path: m.Path, Size: m.Size}
		if len(terms) > 0 {
			if data, err := e.fs.ReadAll(m.Path); err == nil {
				mf.Excerpts = ExtractExcerpts(string(data), terms, 3)
			}
		}
		matches = append(matches, mf)
	}

	e.logger("gsearch: %d matches, %d errors, cancelled=%v", len(matches), result.ErrorsEncountered, result.WasCancelled)

	return SearchResult{
		Matches:           matches,
		ErrorsEncountered: result.ErrorsEncountered,
		PathErrors:        result.PathErrors,
		FileReadErrors:    result.FileReadErrors,
		WasCancelled:      result.WasCancelled,
	}
}
