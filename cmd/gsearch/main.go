// Command gsearch is the terminal front end for the gsearch engine: it
// turns command-line flags into a gsearch.SearchParams, runs the search
// against the local disk, and prints progress and matched files with
// colored output, mirroring the teacher's hand-rolled terminal UI.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cyphriot-garp/gsearch"
	"github.com/cyphriot-garp/gsearch/adapter"
	"github.com/cyphriot-garp/gsearch/config"
	"github.com/cyphriot-garp/gsearch/internal/orchestrator"
)

const (
	red    = "\033[0;31m"
	green  = "\033[0;32m"
	yellow = "\033[1;33m"
	blue   = "\033[0;34m"
	gray   = "\033[0;90m"
	nc     = "\033[0m"
	bold   = "\033[1m"
)

var version = "0.1"

func main() {
	args := parseArguments(os.Args[1:])
	if args == nil {
		showUsage()
		os.Exit(1)
	}
	if args.Term == "" {
		fmt.Printf("%sError: no search term provided%s\n", red, nc)
		os.Exit(1)
	}

	params := args.toSearchParams()
	showSearchInfo(args, params)

	fs := adapter.NewOS()
	engine := gsearch.New(fs, gsearch.Settings{
		FuzzyBooleanEnabled: args.FuzzyBoolean,
		FuzzyNearEnabled:    args.FuzzyNear,
		WholeWordMatching:   args.WholeWord,
	})

	var cancelled atomic.Bool
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		fmt.Printf("\n%sCancelling...%s\n", yellow, nc)
		cancelled.Store(true)
	}()

	start := time.Now()
	result := engine.Search(params, printProgress, cancelled.Load)
	elapsed := time.Since(start)

	fmt.Println()
	if result.WasCancelled {
		fmt.Printf("%sSearch cancelled after %s%s\n", yellow, elapsed.Round(time.Millisecond), nc)
	}
	if len(result.Matches) == 0 {
		fmt.Printf("%sNo matching files found.%s\n", yellow, nc)
		return
	}

	fmt.Printf("\n%s%sFound %s files in %s%s\n\n",
		bold, green, formatNumber(len(result.Matches)), elapsed.Round(time.Millisecond), nc)

	displayResults(result.Matches)

	if result.ErrorsEncountered > 0 {
		if args.Verbose {
			fmt.Printf("%s%d errors encountered during search:%s\n", gray, result.ErrorsEncountered, nc)
			for _, pe := range result.PathErrors {
				fmt.Printf("    %s%s%s\n", gray, pe, nc)
			}
		} else {
			fmt.Printf("%s%d errors encountered during search (use -v to list)%s\n", gray, result.ErrorsEncountered, nc)
		}
	}
}

var announcedEstimate bool

func printProgress(ev orchestrator.ProgressEvent) {
	if ev.Total == 0 {
		return
	}
	if !announcedEstimate {
		announcedEstimate = true
		fmt.Printf("%sEstimated time:%s %s\n", gray, nc, config.EstimatedSearchTime(ev.Total))
	}
	fmt.Printf("\r%s%s %d/%d%s  %s", blue, "scanning", ev.Processed, ev.Total, nc, gray)
	if len(ev.CurrentFile) > 60 {
		fmt.Printf("%s%s", "..."+ev.CurrentFile[len(ev.CurrentFile)-57:], nc)
	} else {
		fmt.Printf("%s%s", ev.CurrentFile, nc)
	}
}

// Arguments is the parsed command-line request, mirroring the shape of
// orchestrator.Params but flattened for flag parsing.
type Arguments struct {
	Term           string
	Mode           string
	Paths          []string
	Extensions     []string
	ExcludeFiles   []string
	ExcludeFolders []string
	MaxDepth       int
	CaseSensitive  bool
	WholeWord      bool
	FuzzyBoolean   bool
	FuzzyNear      bool
	Verbose        bool
}

func (a *Arguments) toSearchParams() gsearch.SearchParams {
	mode := orchestrator.ModeTerm
	switch a.Mode {
	case "boolean":
		mode = orchestrator.ModeBoolean
	case "regex":
		mode = orchestrator.ModeRegex
	}

	paths := a.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	return gsearch.SearchParams{
		SearchPaths:               paths,
		Extensions:                a.Extensions,
		ExcludeFiles:              a.ExcludeFiles,
		ExcludeFolders:            a.ExcludeFolders,
		FolderExclusionMode:       orchestrator.Contains,
		MaxDepth:                  a.MaxDepth,
		ContentSearchTerm:         a.Term,
		ContentSearchMode:         mode,
		CaseSensitive:             a.CaseSensitive,
		WholeWordMatching:         a.WholeWord,
		FuzzySearchBooleanEnabled: a.FuzzyBoolean,
		FuzzySearchNearEnabled:    a.FuzzyNear,
	}
}

func parseArguments(args []string) *Arguments {
	if len(args) == 0 {
		return nil
	}

	result := &Arguments{Mode: "term"}
	var terms []string

	i := 0
	next := func() (string, bool) {
		i++
		if i >= len(args) {
			return "", false
		}
		return args[i], true
	}

	for ; i < len(args); i++ {
		a := args[i]
		switch a {
		case "--boolean":
			result.Mode = "boolean"
		case "--regex":
			result.Mode = "regex"
		case "--case-sensitive", "-c":
			result.CaseSensitive = true
		case "--whole-word", "-w":
			result.WholeWord = true
		case "--fuzzy":
			result.FuzzyBoolean = true
			result.FuzzyNear = true
		case "--path", "-p":
			if v, ok := next(); ok {
				result.Paths = append(result.Paths, v)
			}
		case "--ext", "-e":
			if v, ok := next(); ok {
				result.Extensions = append(result.Extensions, strings.Split(v, ",")...)
			}
		case "--docs":
			result.Extensions = append(result.Extensions, config.DocumentTypes...)
		case "--code":
			result.Extensions = append(result.Extensions, config.CodeTypes...)
		case "--exclude-file":
			if v, ok := next(); ok {
				result.ExcludeFiles = append(result.ExcludeFiles, v)
			}
		case "--exclude-folder":
			if v, ok := next(); ok {
				result.ExcludeFolders = append(result.ExcludeFolders, v)
			}
		case "--max-depth", "-d":
			if v, ok := next(); ok {
				if n, err := strconv.Atoi(v); err == nil {
					result.MaxDepth = n
				}
			}
		case "--verbose", "-v":
			result.Verbose = true
		case "--help", "-h":
			showUsage()
			os.Exit(0)
		case "--version":
			fmt.Printf("%sgsearch v%s%s\n", green, version, nc)
			os.Exit(0)
		default:
			terms = append(terms, a)
		}
	}

	result.Term = strings.Join(terms, " ")
	return result
}

func showUsage() {
	fmt.Printf("%s%sgsearch%s - filesystem content search engine\n", bold, blue, nc)
	fmt.Println()
	fmt.Printf("%sUSAGE:%s\n", bold, nc)
	fmt.Printf("  gsearch [flags] <term or boolean query>\n")
	fmt.Println()
	fmt.Printf("%sFLAGS:%s\n", bold, nc)
	fmt.Printf("  %s--path%s PATH          root to search (repeatable, default \".\")\n", yellow, nc)
	fmt.Printf("  %s--ext%s LIST           comma-separated extensions to include\n", yellow, nc)
	fmt.Printf("  %s--docs%s               restrict to common document extensions\n", yellow, nc)
	fmt.Printf("  %s--code%s               restrict to common source code extensions\n", yellow, nc)
	fmt.Printf("  %s--exclude-file%s GLOB  exclude files matching glob or /regex/flags\n", yellow, nc)
	fmt.Printf("  %s--exclude-folder%s S   exclude folders containing S\n", yellow, nc)
	fmt.Printf("  %s--max-depth%s N        limit recursion depth\n", yellow, nc)
	fmt.Printf("  %s--boolean%s            parse the term as an AND/OR/NOT/NEAR query\n", yellow, nc)
	fmt.Printf("  %s--regex%s              treat the term as a regular expression\n", yellow, nc)
	fmt.Printf("  %s--case-sensitive, -c%s match case exactly\n", yellow, nc)
	fmt.Printf("  %s--whole-word, -w%s     match whole words only\n", yellow, nc)
	fmt.Printf("  %s--fuzzy%s              enable approximate matching\n", yellow, nc)
	fmt.Println()
	fmt.Printf("%sEXAMPLES:%s\n", bold, nc)
	fmt.Printf("  gsearch --path ./docs invoice\n")
	fmt.Printf("  gsearch --boolean 'contract AND NOT draft'\n")
	fmt.Printf("  gsearch --regex 'inv[0-9]{4}'\n")
	fmt.Println()
}

func showSearchInfo(args *Arguments, params gsearch.SearchParams) {
	fmt.Printf("%s%sgsearch%s\n", bold, blue, nc)
	fmt.Printf("%sSearching for:%s %s%q%s (%s)\n", bold, nc, green, args.Term, nc, args.Mode)
	fmt.Printf("%sRoots:%s %s%s%s\n", bold, nc, yellow, strings.Join(params.SearchPaths, ", "), nc)
	if len(params.Extensions) > 0 {
		fmt.Printf("%sExtensions:%s %s\n", bold, nc, strings.Join(params.Extensions, ", "))
	}
	fmt.Println()
}

func displayResults(matches []gsearch.MatchedFile) {
	reader := bufio.NewReader(os.Stdin)
	interactive := isTerminal()

	for i, m := range matches {
		fmt.Printf("%s%d/%d%s %s%s%s\n", bold, i+1, len(matches), nc, green, m.Path, nc)
		fmt.Printf("    %ssize:%s %s\n", gray, nc, formatSize(m.Size))

		if len(m.Excerpts) == 0 {
			fmt.Printf("    %sno readable excerpts%s\n", gray, nc)
		} else {
			for _, e := range m.Excerpts {
				fmt.Printf("    %s\n", e)
			}
		}
		fmt.Println()

		if interactive && i < len(matches)-1 {
			fmt.Printf("%s[Enter for next, q to quit]%s", yellow, nc)
			line, _ := reader.ReadString('\n')
			if strings.TrimSpace(line) == "q" {
				fmt.Printf("%sStopped.%s\n", yellow, nc)
				break
			}
		}
	}
}

func isTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatNumber(n int) string {
	str := strconv.Itoa(n)
	if len(str) <= 3 {
		return str
	}
	var b strings.Builder
	for i, d := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteString(",")
		}
		b.WriteRune(d)
	}
	return b.String()
}
