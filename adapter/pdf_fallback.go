package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func writeTempPDF(data []byte) (string, error) {
	f, err := os.CreateTemp("", "gsearch_pdf_*.pdf")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func removeTemp(path string) {
	os.RemoveAll(path)
}

// extractContentBatch dumps raw PDF content streams for pages [start,end]
// into a fresh temp directory via pdfcpu.
func extractContentBatch(pdfPath string, start, end int) (string, error) {
	dir, err := os.MkdirTemp("", "gsearch_pdfcpu_*")
	if err != nil {
		return "", err
	}
	pages := []string{fmt.Sprintf("%d-%d", start, end)}
	if err := api.ExtractContentFile(pdfPath, dir, pages, nil); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("adapter: pdfcpu extract content: %w", err)
	}
	return dir, nil
}

// readContentStreams reads every file pdfcpu wrote into dir, in name
// order, and pulls literal string runs out of the raw PDF syntax,
// capping each file's contribution to maxPerFile bytes of output.
func readContentStreams(dir string, maxPerFile int) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []byte
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		out = append(out, parsePDFStringLiterals(string(b), maxPerFile)...)
		out = append(out, ' ')
	}
	return string(out)
}

// parsePDFStringLiterals collects text within balanced, non-escaped
// parentheses from raw PDF content-stream syntax, honoring backslash
// escapes, capping total output at maxOut bytes.
func parsePDFStringLiterals(s string, maxOut int) string {
	var out []byte
	depth := 0
	escape := false
	in := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !in {
			if c == '(' {
				in = true
				depth = 1
			}
			continue
		}
		if escape {
			out = append(out, c)
			escape = false
			if len(out) >= maxOut {
				return string(out)
			}
			continue
		}
		switch c {
		case '\\':
			escape = true
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				in = false
				out = append(out, ' ')
			} else {
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
		if len(out) >= maxOut {
			return string(out)
		}
	}
	return string(out)
}
