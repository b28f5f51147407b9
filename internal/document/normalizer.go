package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrBinaryInput is returned when no recoverable text can be decoded from
// the input at all. It is the only fatal normalizer error; anything less
// degrades to warnings so extraction can continue.
var ErrBinaryInput = errors.New("input contains no recoverable text")

// WarningKind classifies recovered normalization problems.
type WarningKind string

const (
	DecodeWarning             WarningKind = "decode"
	MalformedContainerWarning WarningKind = "malformed-container"
)

// Warning records a recovered problem encountered while normalizing.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// maxBinaryRatio is the NUL/control byte proportion above which plain
// input is classified binary rather than decoded with replacements.
const maxBinaryRatio = 0.10

// Normalize converts raw input bytes into a SourceDocument with stable
// line numbering. The path hint selects container handling (.docx, .pdf,
// .html); everything else is treated as plain text. Malformed encodings
// never fail: undecodable sequences become U+FFFD with a DecodeWarning.
func Normalize(raw []byte, path string) (*SourceDocument, []Warning, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		return normalizeDocx(raw)
	case ".pdf":
		return normalizePDF(raw)
	case ".html", ".htm":
		return normalizeHTML(raw)
	default:
		return normalizeText(raw)
	}
}

// normalizeText decodes plain text input.
func normalizeText(raw []byte) (*SourceDocument, []Warning, error) {
	var warnings []Warning

	text, decodeWarnings, err := decodeBytes(raw)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, decodeWarnings...)

	return newSourceDocument(normalizeNewlines(text)), warnings, nil
}

// decodeBytes turns raw bytes into a UTF-8 string, trying BOM-declared
// encodings first, then UTF-8, then Latin-1 as a last resort.
func decodeBytes(raw []byte) (string, []Warning, error) {
	if len(raw) == 0 {
		return "", nil, nil
	}

	var warnings []Warning

	// BOM-declared UTF-16.
	if len(raw) >= 2 && (bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF})) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err == nil {
			return string(out), nil, nil
		}
		warnings = append(warnings, Warning{DecodeWarning, "UTF-16 decode failed, retrying as UTF-8"})
	}

	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM

	if isBinary(raw) {
		return "", nil, ErrBinaryInput
	}

	if utf8.Valid(raw) {
		return string(raw), warnings, nil
	}

	// Mostly valid UTF-8 with stray sequences: replace them and warn
	// rather than abort.
	if validUTF8Ratio(raw) >= 0.80 {
		warnings = append(warnings, Warning{DecodeWarning, "invalid UTF-8 sequences replaced with U+FFFD"})
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), warnings, nil
	}

	// Legacy single-byte text: Latin-1 decoding cannot fail.
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", nil, ErrBinaryInput
	}
	warnings = append(warnings, Warning{DecodeWarning, "input decoded as ISO-8859-1"})
	return string(out), warnings, nil
}

// isBinary reports whether raw looks like a binary payload rather than
// text with a broken encoding.
func isBinary(raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	nul := bytes.Count(raw, []byte{0})
	return float64(nul)/float64(len(raw)) > maxBinaryRatio/10
}

func validUTF8Ratio(raw []byte) float64 {
	if len(raw) == 0 {
		return 1
	}
	valid := 0
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r != utf8.RuneError || size > 1 {
			valid += size
		}
		i += size
	}
	return float64(valid) / float64(len(raw))
}

// normalizeNewlines folds CRLF and lone CR to LF so line numbering is
// stable across platforms.
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
