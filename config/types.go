// Package config holds the default extension catalogs used by the CLI's
// --docs/--code convenience flags, adapted from the teacher's ripgrep-backed
// file type lists (the ripgrep subprocess itself is gone: this engine walks
// and reads files directly, see adapter.OS).
package config

// DocumentTypes are extensions treated as document content by the --docs flag.
var DocumentTypes = []string{
	"txt", "md", "html", "xml", "csv", "yaml", "yml",
	"eml", "mbox", "msg", "pdf",
	"doc", "docx", "xls", "xlsx", "ppt", "pptx",
	"odt", "ods", "odp", "rtf",
	"log", "cfg", "conf", "ini", "sh", "bat",
}

// CodeTypes are extensions treated as source code by the --code flag.
var CodeTypes = []string{
	"js", "ts", "sql", "py", "php", "java", "cpp", "c", "json",
	"go", "rs", "rb", "cs", "swift", "kt", "scala", "clj",
	"h", "hpp", "cc", "cxx", "pl", "r", "m", "mm",
}

// EstimatedSearchTime gives the user a rough expectation before a large walk
// starts, based on the discovered candidate count.
func EstimatedSearchTime(fileCount int) string {
	switch {
	case fileCount < 100:
		return "under 10 seconds"
	case fileCount < 1000:
		return "10-30 seconds"
	case fileCount < 5000:
		return "30 seconds - 2 minutes"
	default:
		return "2-10 minutes (depends on file sizes)"
	}
}
