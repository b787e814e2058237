// Package clean strips markup and normalizes whitespace in extracted
// content. It backs both the orchestrator's optional CleanMarkup
// pre-filter and the root package's excerpt cosmetics, so the two stay
// in lockstep instead of drifting into two different tag strippers.
package clean

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
	htmlEntityRe  = regexp.MustCompile(`&[a-zA-Z0-9#]*;`)
	controlCharRe = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	spaceRe       = regexp.MustCompile(`\s+`)
)

// markupExtensions are the teacher's config.DocumentTypes entries whose
// content is markup syntax rather than prose, eligible for the
// CleanMarkup pre-filter ahead of predicate evaluation.
var markupExtensions = map[string]bool{
	"html": true,
	"htm":  true,
	"xml":  true,
	"md":   true,
}

// IsMarkupExt reports whether ext (no leading dot, any case) names a
// markup-bearing document type.
func IsMarkupExt(ext string) bool {
	return markupExtensions[strings.ToLower(ext)]
}

// Content strips HTML/XML tags, entities, control characters, and
// collapses whitespace, independent of the matcher path that found it.
func Content(content string) string {
	content = htmlTagRe.ReplaceAllString(content, " ")
	content = htmlEntityRe.ReplaceAllString(content, " ")
	content = controlCharRe.ReplaceAllString(content, "")
	content = spaceRe.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}
