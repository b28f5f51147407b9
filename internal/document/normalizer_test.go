package document

import (
	"archive/zip"
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Normalize:
// - Plain UTF-8 passes through unchanged
// - CRLF and lone CR fold to LF
// - UTF-8 BOM is stripped
// - Mostly-valid UTF-8 gets U+FFFD replacements plus a decode warning
// - Latin-1 text decodes with a warning
// - NUL-heavy input fails with ErrBinaryInput
// - Empty input yields an empty document
// - .docx extraction: paragraphs become lines, embedded media warns,
//   broken zip fails with ErrBinaryInput
// - .pdf extraction: Tj/TJ text from plain and flate streams, non-PDF
//   prefix and text-free PDFs fail with ErrBinaryInput
// - .html extraction: visible text only, script/style dropped

func TestNormalize_PlainUTF8(t *testing.T) {
	t.Parallel()

	doc, warnings, err := Normalize([]byte("def f():\n    pass\n"), "snippet.txt")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "def f():\n    pass\n", doc.Text())
}

func TestNormalize_NewlineFolding(t *testing.T) {
	t.Parallel()

	doc, _, err := Normalize([]byte("a\r\nb\rc\n"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", doc.Text())
	assert.Equal(t, 3, doc.LineCount())
}

func TestNormalize_StripsUTF8BOM(t *testing.T) {
	t.Parallel()

	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello\n")...)
	doc, warnings, err := Normalize(raw, "bom.txt")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "hello\n", doc.Text())
}

func TestNormalize_ReplacesStrayInvalidUTF8(t *testing.T) {
	t.Parallel()

	raw := []byte("mostly valid text with one bad byte: \xFF end\n")
	doc, warnings, err := Normalize(raw, "mixed.txt")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, DecodeWarning, warnings[0].Kind)
	assert.Contains(t, doc.Text(), "�")
}

func TestNormalize_BinaryInputFails(t *testing.T) {
	t.Parallel()

	raw := bytes.Repeat([]byte{0x00, 0x01, 'a', 0x00}, 64)
	_, _, err := Normalize(raw, "blob.bin")
	assert.ErrorIs(t, err, ErrBinaryInput)
}

func TestNormalize_EmptyInput(t *testing.T) {
	t.Parallel()

	doc, warnings, err := Normalize(nil, "empty.txt")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, doc.Len())
}

func buildDocx(t *testing.T, documentXML string, extras ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if documentXML != "" {
		w, err := zw.Create("word/document.xml")
		require.NoError(t, err)
		_, err = w.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	for _, name := range extras {
		_, err := zw.Create(name)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestNormalize_DocxParagraphs(t *testing.T) {
	t.Parallel()

	raw := buildDocx(t, `<?xml version="1.0"?>
<document>
  <body>
    <p><r><t>first paragraph</t></r></p>
    <p><r><t>x = 1</t></r><r><tab/><t>y = 2</t></r></p>
  </body>
</document>`)

	doc, warnings, err := Normalize(raw, "report.docx")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Contains(t, doc.Text(), "first paragraph\n")
	assert.Contains(t, doc.Text(), "x = 1\ty = 2\n")
}

func TestNormalize_DocxWarnsOnEmbeddedMedia(t *testing.T) {
	t.Parallel()

	raw := buildDocx(t, `<document><p><t>text</t></p></document>`,
		"word/media/image1.png", "word/embeddings/sheet.xlsx")

	_, warnings, err := Normalize(raw, "report.docx")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, MalformedContainerWarning, warnings[0].Kind)
}

func TestNormalize_DocxBrokenContainer(t *testing.T) {
	t.Parallel()

	_, _, err := Normalize([]byte("this is not a zip"), "report.docx")
	assert.ErrorIs(t, err, ErrBinaryInput)

	_, _, err = Normalize(buildDocx(t, "", "word/other.xml"), "report.docx")
	assert.ErrorIs(t, err, ErrBinaryInput)
}

func TestNormalize_PDFShowText(t *testing.T) {
	t.Parallel()

	content := "BT (hello from pdf) Tj ET\nBT [(def f) (\\(\\):)] TJ ET"
	raw := []byte("%PDF-1.4\n1 0 obj\n<< /Length 99 >>\nstream\n" + content + "\nendstream\nendobj\n%%EOF")

	doc, warnings, err := Normalize(raw, "doc.pdf")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Contains(t, doc.Text(), "hello from pdf")
	assert.Contains(t, doc.Text(), "def f():")
}

func TestNormalize_PDFFlateStream(t *testing.T) {
	t.Parallel()

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write([]byte("BT (inflated text) Tj ET"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	raw := append([]byte("%PDF-1.4\n1 0 obj\n<< /Filter /FlateDecode >>\nstream\n"), compressed.Bytes()...)
	raw = append(raw, []byte("\nendstream\nendobj\n%%EOF")...)

	doc, _, err := Normalize(raw, "doc.pdf")
	require.NoError(t, err)
	assert.Contains(t, doc.Text(), "inflated text")
}

func TestNormalize_PDFFailures(t *testing.T) {
	t.Parallel()

	_, _, err := Normalize([]byte("plain text, no pdf header"), "doc.pdf")
	assert.ErrorIs(t, err, ErrBinaryInput)

	_, _, err = Normalize([]byte("%PDF-1.4\nno streams here\n%%EOF"), "doc.pdf")
	assert.ErrorIs(t, err, ErrBinaryInput)
}

func TestNormalize_HTMLVisibleText(t *testing.T) {
	t.Parallel()

	raw := []byte(`<html><head><style>body { color: red }</style></head>
<body><h1>Title</h1><p>Some prose.</p>
<pre>def f():
    return 1</pre>
<script>alert("never this")</script></body></html>`)

	doc, warnings, err := Normalize(raw, "page.html")
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Contains(t, doc.Text(), "Title")
	assert.Contains(t, doc.Text(), "def f():\n    return 1")
	assert.NotContains(t, doc.Text(), "alert")
	assert.NotContains(t, doc.Text(), "color: red")
}
