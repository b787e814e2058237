// Package adapter implements the core's FS adapter collaborator (§6):
// an OS-backed file walker plus a registry of binary-format decoders so
// EML/MBOX/MSG/PDF files are searchable by content like any text file.
// The core never imports this package directly; it only ever sees
// []byte/string content through the orchestrator.FS interface.
package adapter

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/emersion/go-mbox"
	"github.com/jhillyerd/enmime"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Extractor decodes a binary or encoded document format to plain text
// for content searching.
type Extractor interface {
	ExtractText(data []byte) (string, error)
}

// Registry dispatches an Extractor by lowercase file extension.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds a Registry with every extractor this module wires.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.extractors["eml"] = &EMLExtractor{}
	r.extractors["mbox"] = &MBOXExtractor{}
	r.extractors["msg"] = &MSGExtractor{}
	r.extractors["pdf"] = &PDFExtractor{}
	r.extractors["html"] = &HTMLExtractor{}
	r.extractors["xml"] = &HTMLExtractor{}
	return r
}

// For returns the extractor registered for ext (with or without a
// leading dot), or nil if content for that extension should be read
// verbatim.
func (r *Registry) For(ext string) Extractor {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return r.extractors[ext]
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)
var whitespaceRe = regexp.MustCompile(`\s+`)

func stripHTMLTags(html string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(htmlTagRe.ReplaceAllString(html, " "), " "))
}

// HTMLExtractor strips markup from .html/.xml files down to plain text.
type HTMLExtractor struct{}

func (e *HTMLExtractor) ExtractText(data []byte) (string, error) {
	return strings.TrimSpace(stripHTMLTags(string(data))), nil
}

// EMLExtractor decodes a single MIME email into subject/body text.
type EMLExtractor struct{}

func (e *EMLExtractor) ExtractText(data []byte) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("adapter: parse eml: %w", err)
	}
	text := env.Text
	if text == "" && env.HTML != "" {
		text = stripHTMLTags(env.HTML)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " ")), nil
}

// MBOXExtractor decodes every message in an mbox archive and joins them
// with a "---" separator line. Queries run over the joined text, so a
// boolean or NEAR match can span adjacent messages.
type MBOXExtractor struct{}

func (e *MBOXExtractor) ExtractText(data []byte) (string, error) {
	reader := mbox.NewReader(bytes.NewReader(data))
	eml := &EMLExtractor{}
	var out strings.Builder

	for {
		msg, err := reader.NextMessage()
		if err != nil {
			break
		}
		content, err := io.ReadAll(msg)
		if err != nil {
			continue
		}
		text, err := eml.ExtractText(content)
		if err != nil {
			continue
		}
		out.WriteString(text)
		out.WriteString("\n---\n")
	}

	if out.Len() == 0 {
		return string(data), nil
	}
	return out.String(), nil
}

// MSGExtractor decodes an Outlook compound-file message by reading its
// OLE property streams directly, falling back to best-effort UTF-16/ASCII
// salvage when the stream layout isn't recognized.
type MSGExtractor struct{}

func (e *MSGExtractor) ExtractText(data []byte) (string, error) {
	if cf, err := mscfb.New(bytes.NewReader(data)); err == nil {
		streams := make(map[string][]byte)
		for ent, entErr := cf.Next(); entErr == nil; ent, entErr = cf.Next() {
			if b, rerr := io.ReadAll(ent); rerr == nil && len(b) > 0 {
				streams[ent.Name] = b
			}
		}

		find := func(keys ...string) ([]byte, bool) {
			for _, k := range keys {
				if v, ok := streams[k]; ok && len(v) > 0 {
					return v, true
				}
			}
			return nil, false
		}
		decode := func(b []byte) string {
			if s, ok := decodeUTF16BestEffort(b); ok {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(whitespaceRe.ReplaceAllString(string(b), " "))
		}

		var subject, body string
		if b, ok := find("__substg1.0_0037001F", "__substg1.0_0037001E"); ok {
			subject = decode(b)
		}
		if b, ok := find("__substg1.0_1000001F", "__substg1.0_1000001E"); ok {
			body = decode(b)
		}
		if body == "" {
			if b, ok := find("__substg1.0_1013001F", "__substg1.0_1013001E", "__substg1.0_10130102"); ok {
				html := decode(b)
				if html == "" {
					html = string(b)
				}
				body = strings.TrimSpace(stripHTMLTags(html))
			}
		}
		if subject != "" || body != "" {
			out := strings.TrimSpace(subject + "\n\n" + body)
			return whitespaceRe.ReplaceAllString(out, " "), nil
		}
	}

	if s, ok := decodeUTF16BestEffort(data); ok {
		return strings.TrimSpace(s), nil
	}
	salvaged := make([]rune, 0, len(data))
	for _, b := range data {
		if b == 0x09 || b == 0x0a || b == 0x0d || (b >= 0x20 && b <= 0x7e) {
			salvaged = append(salvaged, rune(b))
		} else {
			salvaged = append(salvaged, ' ')
		}
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(string(salvaged), " ")), nil
}

func decodeUTF16BestEffort(b []byte) (string, bool) {
	if s, ok := decodeUTF16(b, unicode.LittleEndian, unicode.ExpectBOM); ok {
		return s, true
	}
	if looksLikeUTF16(b, 1) {
		if s, ok := decodeUTF16(b, unicode.LittleEndian, unicode.IgnoreBOM); ok {
			return s, true
		}
	}
	if looksLikeUTF16(b, 0) {
		if s, ok := decodeUTF16(b, unicode.BigEndian, unicode.IgnoreBOM); ok {
			return s, true
		}
	}
	return "", false
}

func decodeUTF16(b []byte, endian unicode.Endianness, bomPolicy unicode.BOMPolicy) (string, bool) {
	r := transform.NewReader(bytes.NewReader(b), unicode.UTF16(endian, bomPolicy).NewDecoder())
	s, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	str := strings.TrimSpace(string(s))
	return str, str != ""
}

// looksLikeUTF16 reports whether >=30% of the bytes at the given parity
// offset are zero, a cheap heuristic for unmarked UTF-16 text.
func looksLikeUTF16(b []byte, offset int) bool {
	if len(b) < 4 {
		return false
	}
	zeros, slots := 0, 0
	for i := offset; i < len(b); i += 2 {
		slots++
		if b[i] == 0x00 {
			zeros++
		}
	}
	return slots > 0 && float64(zeros) >= 0.30*float64(slots)
}

// PDFExtractor extracts text from .pdf files via ledongthuc/pdf for the
// common case, falling back to pdfcpu's content-stream extraction (batched,
// page-capped) for documents ledongthuc/pdf can't parse cleanly.
type PDFExtractor struct{}

const (
	pdfPageCap    = 200
	pdfPerPageCap = 128 * 1024
)

func (e *PDFExtractor) ExtractText(data []byte) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = fallbackPDFText(data)
		}
	}()

	reader, rerr := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if rerr != nil {
		return fallbackPDFText(data)
	}

	var buf strings.Builder
	pages := reader.NumPage()
	if pages > pdfPageCap {
		pages = pdfPageCap
	}
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, terr := page.GetPlainText(nil)
		if terr != nil {
			continue
		}
		if len(text) > pdfPerPageCap {
			text = text[:pdfPerPageCap]
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	if buf.Len() == 0 {
		return fallbackPDFText(data)
	}
	return buf.String(), nil
}

// fallbackPDFText extracts raw PDF content streams via pdfcpu in batches
// and parses literal string runs out of them; used when ledongthuc/pdf
// can't produce usable text (encrypted streams, unusual fonts, panics).
func fallbackPDFText(data []byte) (string, error) {
	tmp, err := writeTempPDF(data)
	if err != nil {
		return string(data), nil
	}
	defer removeTemp(tmp)

	pageCount, err := api.PageCountFile(tmp)
	if err != nil {
		return string(data), nil
	}

	const batchSize = 32
	var aggregated strings.Builder
	for start := 1; start <= pageCount && start <= pdfPageCap; start += batchSize {
		end := start + batchSize - 1
		if end > pageCount {
			end = pageCount
		}
		if end > pdfPageCap {
			end = pdfPageCap
		}

		dir, err := extractContentBatch(tmp, start, end)
		if err != nil {
			continue
		}
		aggregated.WriteString(readContentStreams(dir, pdfPerPageCap))
		removeTemp(dir)
	}

	if aggregated.Len() == 0 {
		return string(data), nil
	}
	return aggregated.String(), nil
}
