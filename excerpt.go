package gsearch

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/cyphriot-garp/gsearch/internal/clean"
)

var (
	emailHeaderRe = regexp.MustCompile(`(?i)^(Content-Type|Content-Transfer-Encoding|MIME-Version|Date|From|To|Subject|Message-ID|Return-Path|Received|X-[^:]*|Authentication-Results):`)
	junkLineRe    = regexp.MustCompile(`^[^a-zA-Z]*$|^[{}\[\]();:=<>|\\]{3,}`)
)

// CleanContent strips markup, control characters, and excess whitespace
// from extracted content, independent of the matcher path that found it.
func CleanContent(content string) string {
	return clean.Content(content)
}

func isJunkLine(line string) bool {
	if emailHeaderRe.MatchString(line) {
		return true
	}
	return junkLineRe.MatchString(line)
}

func containsWholeWordCI(text, word string) bool {
	if word == "" {
		return false
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

// ExtractExcerpts returns up to maxExcerpts clean, readable snippets of
// content centered on lines containing any of terms, each with two lines
// of surrounding context, skipping markup-noise and near-empty lines.
func ExtractExcerpts(content string, terms []string, maxExcerpts int) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	excerpts := make([]string, 0, maxExcerpts)
	used := make(map[int]bool)

	for i, line := range lines {
		if used[i] || len(excerpts) >= maxExcerpts {
			continue
		}

		cleanLine := CleanContent(line)
		if len(cleanLine) < 15 || isJunkLine(cleanLine) {
			continue
		}

		matched := false
		for _, term := range terms {
			if containsWholeWordCI(cleanLine, term) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		start := max(0, i-2)
		end := min(len(lines), i+3)

		var contextLines []string
		for j := start; j < end; j++ {
			if used[j] {
				continue
			}
			cl := CleanContent(lines[j])
			if len(cl) >= 10 && !isJunkLine(cl) {
				contextLines = append(contextLines, cl)
				used[j] = true
			}
		}

		if len(contextLines) == 0 {
			continue
		}
		excerpt := strings.Join(contextLines, " ")
		if len(excerpt) > 30 {
			excerpts = append(excerpts, excerpt)
		}
	}

	return excerpts
}
