// Package orchestrator implements the Orchestrator component (C7):
// discovery via an external FS adapter, path/size/date/depth filtering,
// predicate compilation, bounded-concurrency content matching, progress
// emission, and cooperative cancellation.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/semaphore"

	"github.com/cyphriot-garp/gsearch/internal/clean"
	"github.com/cyphriot-garp/gsearch/internal/fileproc"
	"github.com/cyphriot-garp/gsearch/internal/predicate"
)

const (
	// concurrencyLimit mirrors FILE_OPERATION_CONCURRENCY_LIMIT's default.
	concurrencyLimit = 20

	statBatchSize = 100

	memCheckInterval = 500
	memPressureBytes = 12 * (1 << 30) / 10 // 1.2 GiB
	memBackoffDelay  = 500 * time.Millisecond
)

// Orchestrator runs searches against a given FS adapter, sharing a
// predicate.Compiler (and therefore its regex/fuzzy/NEAR caches) across
// every call.
type Orchestrator struct {
	fs       FS
	compiler *predicate.Compiler
}

// New wires an Orchestrator over fs and a shared predicate compiler.
func New(fs FS, compiler *predicate.Compiler) *Orchestrator {
	return &Orchestrator{fs: fs, compiler: compiler}
}

// Search runs one full search per spec.md §4.7's six phases. progress
// and cancelled may be nil.
func (o *Orchestrator) Search(params Params, progress func(ProgressEvent), cancelled func() bool) Result {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	progress(ProgressEvent{Status: StatusSearching, Message: "discovering files"})

	result := Result{}

	// Phase 1: discovery.
	globs := extensionGlobs(params.Extensions)
	var candidates []string
	for _, root := range params.SearchPaths {
		paths, errs := o.fs.ListFiles(root, globs, params.MaxDepth, cancelled)
		candidates = append(candidates, paths...)
		for _, e := range errs {
			// A permission error on a directory the caller asked to
			// exclude would have been skipped anyway; don't surface it.
			if matchesFolderExclude(e.Path, params.ExcludeFolders, params.FolderExclusionMode) {
				continue
			}
			result.ErrorsEncountered++
			result.PathErrors = append(result.PathErrors, fmt.Sprintf("%s: %v", e.Path, e.Err))
		}
	}

	if cancelled() {
		result.WasCancelled = true
		progress(ProgressEvent{Status: StatusCancelled, Message: "cancelled during discovery"})
		return result
	}

	// Phase 2: filtering.
	filtered, filterErrs := o.filter(candidates, params, cancelled)
	result.ErrorsEncountered += len(filterErrs)
	for _, e := range filterErrs {
		result.PathErrors = append(result.PathErrors, e)
	}

	if cancelled() {
		result.WasCancelled = true
		progress(ProgressEvent{Status: StatusCancelled, Message: "cancelled during filtering"})
		return result
	}

	// Phase 3: predicate compilation.
	var matcher predicate.Matcher
	overlap := 0
	if params.ContentSearchTerm != "" {
		mode := predicate.Mode{
			FuzzyBoolean:  params.FuzzySearchBooleanEnabled,
			FuzzyNear:     params.FuzzySearchNearEnabled,
			CaseSensitive: params.CaseSensitive,
			WholeWord:     params.WholeWordMatching,
		}
		node, parseErr := o.buildNode(params.ContentSearchTerm, params.ContentSearchMode, mode)
		if parseErr != nil {
			result.ErrorsEncountered = 1
			result.PathErrors = []string{parseErr.Error()}
			progress(ProgressEvent{Status: StatusError, Message: parseErr.Error(), Error: parseErr})
			return result
		}
		overlap = predicate.RequiredOverlap(node, mode)
		matcher = o.compiler.CompileNode(node, mode)
	}

	// Phase 4 & 5: content matching with progress.
	total := len(filtered)
	progressStep := max(1, total/100)
	var processed int
	var filesMatched int
	var bytesProcessed int64
	var mu sync.Mutex
	start := time.Now()

	sem := semaphore.NewWeighted(adaptiveWorkers(total, concurrencyLimit))
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()
	go watchCancellation(ctx, cancelCtx, cancelled)
	var wg sync.WaitGroup

	// matchedAt is indexed by discovery order so the final result
	// preserves discovery ordering regardless of goroutine completion order.
	matchedAt := make([]*Match, total)

	runStats := func() *Stats {
		elapsed := time.Since(start).Seconds()
		s := &Stats{
			FilesProcessed: processed,
			FilesMatched:   filesMatched,
			BytesProcessed: bytesProcessed,
			ElapsedSeconds: elapsed,
		}
		if elapsed > 0 {
			s.ThroughputBytesPerSec = float64(bytesProcessed) / elapsed
		}
		return s
	}

	for i, info := range filtered {
		if cancelled() {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(idx int, info FileInfo) {
			defer wg.Done()
			defer sem.Release(1)

			matched := matcher == nil
			var readErr error
			if matcher != nil {
				matched, readErr = o.matchFile(info, matcher, overlap, params.CleanMarkup)
			}

			mu.Lock()
			defer mu.Unlock()

			processed++
			bytesProcessed += info.Size
			if readErr != nil {
				result.FileReadErrors = append(result.FileReadErrors, FileReadError{Path: info.Path, Reason: readErr.Error()})
			} else if matched {
				filesMatched++
				matchedAt[idx] = &Match{Path: info.Path, Size: info.Size, ModTime: info.ModTime}
			}

			if processed%memCheckInterval == 0 {
				applyMemoryBackpressure()
			}
			if processed%progressStep == 0 || processed == total {
				progress(ProgressEvent{Processed: processed, Total: total, Status: StatusSearching, CurrentFile: info.Path, Stats: runStats()})
			}
		}(i, info)
	}

	wg.Wait()

	for _, m := range matchedAt {
		if m != nil {
			result.Matches = append(result.Matches, *m)
		}
	}

	if cancelled() {
		result.WasCancelled = true
		progress(ProgressEvent{Processed: processed, Total: total, Status: StatusCancelled, Message: "cancelled", Stats: runStats()})
		return result
	}

	progress(ProgressEvent{Processed: processed, Total: total, Status: StatusCompleted, Message: "search complete", Stats: runStats()})
	return result
}

// buildNode turns a content_search_term/content_search_mode pair into an
// AST node, dispatching per mode. Boolean mode runs it through the
// mini-language parser; Term and Regex modes wrap the raw string as a
// single atom directly.
func (o *Orchestrator) buildNode(term string, mode ContentSearchMode, pm predicate.Mode) (predicate.Node, *predicate.ParseError) {
	switch mode {
	case ModeRegex:
		return predicate.AtomNode{Atom: predicate.Regex{Pattern: term, Flags: regexFlags(pm)}}, nil
	case ModeTerm:
		return predicate.AtomNode{Atom: predicate.Term{Text: term, CaseSensitive: pm.CaseSensitive, WholeWord: pm.WholeWord}}, nil
	default: // ModeBoolean
		node, err := predicate.Parse(term, predicate.ParseMode{CaseSensitive: pm.CaseSensitive, WholeWord: pm.WholeWord})
		if err != nil {
			if pe, ok := err.(*predicate.ParseError); ok {
				return nil, pe
			}
			return nil, &predicate.ParseError{Message: err.Error()}
		}
		return node, nil
	}
}

func regexFlags(pm predicate.Mode) string {
	if pm.CaseSensitive {
		return ""
	}
	return "i"
}

// matchFile streams info.Path through the FileProcessor with a chunk
// overlap sized to the widest span the matcher's AST can observe. The
// max-size rejection happens against the already-stat'd info.Size,
// before any read of the file's content. When cleanMarkup is set and
// info.Path names a markup-bearing extension, the file is read in full
// and stripped of markup before matching, since tag-stripping can't be
// done correctly on a partial chunk.
func (o *Orchestrator) matchFile(info FileInfo, matcher predicate.Matcher, overlap int, cleanMarkup bool) (bool, error) {
	if info.Size > fileproc.DefaultMaxFileSize {
		return false, fileproc.ErrFileTooLarge
	}

	if cleanMarkup && isMarkupPath(info.Path) {
		data, err := o.fs.ReadAll(info.Path)
		if err != nil {
			return false, fmt.Errorf("orchestrator: read %s: %w", info.Path, err)
		}
		cleaned := clean.Content(string(data))
		res := fileproc.Process(strings.NewReader(cleaned), fileproc.Matcher(matcher), fileproc.Options{Overlap: overlap})
		if res.Error != nil {
			return false, res.Error
		}
		return res.Matched, nil
	}

	stream, err := o.fs.OpenStream(info.Path)
	if err != nil {
		return false, fmt.Errorf("orchestrator: open %s: %w", info.Path, err)
	}
	defer stream.Close()

	res := fileproc.Process(stream, fileproc.Matcher(matcher), fileproc.Options{Overlap: overlap})
	if res.Error != nil {
		return false, res.Error
	}
	return res.Matched, nil
}

func isMarkupPath(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return clean.IsMarkupExt(ext)
}

// filter applies phase 2: file excludes, folder excludes, and date/size
// predicates, fetching stats in batches of statBatchSize.
func (o *Orchestrator) filter(candidates []string, params Params, cancelled func() bool) ([]FileInfo, []string) {
	var kept []FileInfo
	var errs []string

	fileExcludes := compileFileExcludes(params.ExcludeFiles)

	for start := 0; start < len(candidates); start += statBatchSize {
		if cancelled() {
			break
		}
		end := min(start+statBatchSize, len(candidates))
		batch := candidates[start:end]

		var mu sync.Mutex
		var wg sync.WaitGroup
		infos := make([]*FileInfo, len(batch))
		for i, path := range batch {
			wg.Add(1)
			go func(i int, path string) {
				defer wg.Done()

				if matchesAnyFileExclude(path, fileExcludes) {
					return
				}
				if matchesFolderExclude(path, params.ExcludeFolders, params.FolderExclusionMode) {
					return
				}

				info, err := o.fs.Stat(path)
				if err != nil {
					mu.Lock()
					errs = append(errs, fmt.Sprintf("%s: %v", path, err))
					mu.Unlock()
					return
				}
				if !passesDateSize(info, params) {
					return
				}

				infos[i] = &info
			}(i, path)
		}
		wg.Wait()
		for _, info := range infos {
			if info != nil {
				kept = append(kept, *info)
			}
		}
	}

	return kept, errs
}

func passesDateSize(info FileInfo, params Params) bool {
	if params.ModifiedAfter != nil && info.ModTime.Before(*params.ModifiedAfter) {
		return false
	}
	if params.ModifiedBefore != nil && info.ModTime.After(*params.ModifiedBefore) {
		return false
	}
	if params.MinSizeBytes != nil && info.Size < *params.MinSizeBytes {
		return false
	}
	if params.MaxSizeBytes != nil && info.Size > *params.MaxSizeBytes {
		return false
	}
	return true
}

// fileExclude is either a glob or a /regex/flags pattern matched against
// a path's basename.
type fileExclude struct {
	glob string
	re   *regexp.Regexp
}

func compileFileExcludes(patterns []string) []fileExclude {
	out := make([]fileExclude, 0, len(patterns))
	for _, p := range patterns {
		if strings.HasPrefix(p, "/") && strings.LastIndex(p, "/") > 0 {
			last := strings.LastIndex(p, "/")
			pattern := p[1:last]
			flags := p[last+1:]
			wrapped := pattern
			if flags != "" {
				wrapped = "(?" + flags + ")" + pattern
			}
			if re, err := regexp.Compile(wrapped); err == nil {
				out = append(out, fileExclude{re: re})
				continue
			}
		}
		out = append(out, fileExclude{glob: p})
	}
	return out
}

func matchesAnyFileExclude(path string, excludes []fileExclude) bool {
	base := filepath.Base(path)
	for _, ex := range excludes {
		if ex.re != nil {
			if ex.re.MatchString(base) {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(ex.glob, base); ok {
			return true
		}
	}
	return false
}

func matchesFolderExclude(path string, patterns []string, mode FolderExclusionMode) bool {
	if len(patterns) == 0 {
		return false
	}
	segments := strings.Split(filepath.ToSlash(path), "/")
	for _, seg := range segments {
		segLower := strings.ToLower(seg)
		for _, p := range patterns {
			pLower := strings.ToLower(p)
			var hit bool
			switch mode {
			case Exact:
				hit = segLower == pLower
			case StartsWith:
				hit = strings.HasPrefix(segLower, pLower)
			case EndsWith:
				hit = strings.HasSuffix(segLower, pLower)
			default: // Contains
				hit = strings.Contains(segLower, pLower)
			}
			if hit {
				return true
			}
		}
	}
	return false
}

// extensionGlobs turns a bare/dotted extension list into basename globs.
func extensionGlobs(extensions []string) []string {
	if len(extensions) == 0 {
		return nil
	}
	globs := make([]string, len(extensions))
	for i, ext := range extensions {
		ext = strings.TrimPrefix(ext, ".")
		globs[i] = "*." + ext
	}
	return globs
}

// adaptiveWorkers picks the semaphore weight below ceiling: fewer workers
// for small candidate sets (where goroutine overhead dominates), ramping
// up to the full ceiling for large ones. Mirrors the teacher's
// OptimizeForFileCount heuristic in search/parallel.go.
func adaptiveWorkers(total, ceiling int) int64 {
	switch {
	case total <= 0:
		return 1
	case total < 20:
		return int64(min(total, 4))
	case total < 200:
		return int64(min(ceiling, 8))
	default:
		return int64(ceiling)
	}
}

// applyMemoryBackpressure requests a GC hint and sleeps briefly when
// resident heap exceeds the spec's 1.2 GiB pressure threshold.
func applyMemoryBackpressure() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	if mem.HeapAlloc > memPressureBytes {
		debug.FreeOSMemory()
		time.Sleep(memBackoffDelay)
	}
}

// watchCancellation polls cancelled and cancels ctx as soon as it flips,
// unblocking any in-flight semaphore.Acquire call.
func watchCancellation(ctx context.Context, cancel context.CancelFunc, cancelled func() bool) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cancelled() {
				cancel()
				return
			}
		}
	}
}
