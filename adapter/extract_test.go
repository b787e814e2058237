package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDispatchesByExtension(t *testing.T) {
	r := NewRegistry()
	assert.IsType(t, &HTMLExtractor{}, r.For(".html"))
	assert.IsType(t, &HTMLExtractor{}, r.For("XML"))
	assert.IsType(t, &EMLExtractor{}, r.For("eml"))
	assert.IsType(t, &MBOXExtractor{}, r.For(".mbox"))
	assert.IsType(t, &MSGExtractor{}, r.For("msg"))
	assert.IsType(t, &PDFExtractor{}, r.For(".pdf"))
}

func TestRegistryUnknownExtensionIsNil(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.For(".txt"))
	assert.Nil(t, r.For(""))
}

func TestHTMLExtractorStripsTags(t *testing.T) {
	e := &HTMLExtractor{}
	text, err := e.ExtractText([]byte("<html><body><p>Hello <b>World</b></p></body></html>"))
	require.NoError(t, err)
	assert.Equal(t, "Hello World", text)
}

func TestHTMLExtractorCollapsesWhitespace(t *testing.T) {
	e := &HTMLExtractor{}
	text, err := e.ExtractText([]byte("<p>one</p>\n\n<p>two</p>"))
	require.NoError(t, err)
	assert.Equal(t, "one two", text)
}

func TestStripHTMLTagsHandlesEntitiesLiterally(t *testing.T) {
	// stripHTMLTags only removes tags, not entities; callers that need
	// entity decoding (excerpt extraction) handle that separately.
	got := stripHTMLTags("<div>a &amp; b</div>")
	assert.Equal(t, "a &amp; b", got)
}

func TestMSGExtractorSalvagesPlainASCIIOnUnrecognizedLayout(t *testing.T) {
	e := &MSGExtractor{}
	text, err := e.ExtractText([]byte("not a real compound file but readable text"))
	require.NoError(t, err)
	assert.Contains(t, text, "not a real compound file but readable text")
}

func TestLooksLikeUTF16DetectsZeroBytePattern(t *testing.T) {
	// "hiab" in little-endian UTF-16: h\x00i\x00a\x00b\x00
	utf16le := []byte{'h', 0x00, 'i', 0x00, 'a', 0x00, 'b', 0x00}
	assert.True(t, looksLikeUTF16(utf16le, 1))
}

func TestLooksLikeUTF16RejectsPlainASCII(t *testing.T) {
	ascii := []byte("hello world this is plain text")
	assert.False(t, looksLikeUTF16(ascii, 1))
}
