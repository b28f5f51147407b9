package document

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// normalizePDF pulls the text layer out of a PDF: show-text operators (Tj,
// TJ, ') inside content streams. Flate-compressed streams are inflated;
// streams with any other filter are skipped with a warning. Page layout,
// fonts and images are ignored entirely; this is a text layer scrape, not
// a renderer.
func normalizePDF(raw []byte) (*SourceDocument, []Warning, error) {
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		return nil, nil, fmt.Errorf("not a PDF: %w", ErrBinaryInput)
	}

	var warnings []Warning
	var sb strings.Builder
	skipped := 0

	for _, stream := range pdfStreams(raw) {
		data := stream.data
		if stream.flate {
			inflated, err := inflate(data)
			if err != nil {
				skipped++
				continue
			}
			data = inflated
		} else if stream.otherFilter {
			skipped++
			continue
		}
		extractShowText(data, &sb)
	}

	if skipped > 0 {
		warnings = append(warnings, Warning{
			Kind:    MalformedContainerWarning,
			Message: fmt.Sprintf("skipped %d undecodable content stream(s)", skipped),
		})
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, nil, fmt.Errorf("PDF has no extractable text layer: %w", ErrBinaryInput)
	}

	return newSourceDocument(normalizeNewlines(text) + "\n"), warnings, nil
}

type pdfStream struct {
	data        []byte
	flate       bool
	otherFilter bool
}

var filterPattern = regexp.MustCompile(`/Filter\s*(?:\[\s*)?/(\w+)`)

// pdfStreams finds stream...endstream sections and their filter, read from
// the object dictionary preceding each stream keyword.
func pdfStreams(raw []byte) []pdfStream {
	var streams []pdfStream
	rest := raw

	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		start := i + len("stream")
		// EOL after the stream keyword.
		if start < len(rest) && rest[start] == '\r' {
			start++
		}
		if start < len(rest) && rest[start] == '\n' {
			start++
		}
		end := bytes.Index(rest[start:], []byte("endstream"))
		if end < 0 {
			break
		}

		// The dictionary lives just before "stream".
		dictFrom := i - 512
		if dictFrom < 0 {
			dictFrom = 0
		}
		dict := rest[dictFrom:i]

		s := pdfStream{data: rest[start : start+end]}
		if m := filterPattern.FindSubmatch(dict); m != nil {
			if string(m[1]) == "FlateDecode" {
				s.flate = true
			} else {
				s.otherFilter = true
			}
		}
		streams = append(streams, s)

		rest = rest[start+end+len("endstream"):]
	}

	return streams
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, 16<<20))
	if err != nil && len(out) == 0 {
		return nil, err
	}
	return out, nil
}

var (
	tjPattern = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|')`)
	tjArray   = regexp.MustCompile(`\[((?:[^\[\]\\]|\\.)*)\]\s*TJ`)
	tjElement = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)
	etMarker  = []byte("ET")
)

// extractShowText appends the text drawn by Tj/'/TJ operators. Each text
// object (BT...ET) ends a line; positioning inside the object is ignored.
func extractShowText(content []byte, sb *strings.Builder) {
	for _, object := range bytes.Split(content, etMarker) {
		wrote := false
		for _, m := range tjPattern.FindAllSubmatch(object, -1) {
			sb.WriteString(unescapePDFString(string(m[1])))
			wrote = true
		}
		for _, m := range tjArray.FindAllSubmatch(object, -1) {
			for _, e := range tjElement.FindAllSubmatch(m[1], -1) {
				sb.WriteString(unescapePDFString(string(e[1])))
				wrote = true
			}
		}
		if wrote {
			sb.WriteByte('\n')
		}
	}
}

// unescapePDFString resolves PDF literal string escapes.
func unescapePDFString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r', 'f', 'b':
			// Ignored control escapes.
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
