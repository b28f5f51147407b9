package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// normalizeDocx extracts the textual layer of a .docx container. Only
// word/document.xml is parsed; embedded objects and media streams are
// dropped with a warning, never interpreted as code.
func normalizeDocx(raw []byte) (*SourceDocument, []Warning, error) {
	var warnings []Warning

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, nil, fmt.Errorf("not a docx container: %w", ErrBinaryInput)
	}

	var docEntry *zip.File
	embedded := 0
	for _, f := range zr.File {
		switch {
		case f.Name == "word/document.xml":
			docEntry = f
		case strings.HasPrefix(f.Name, "word/embeddings/"), strings.HasPrefix(f.Name, "word/media/"):
			embedded++
		}
	}
	if embedded > 0 {
		warnings = append(warnings, Warning{
			Kind:    MalformedContainerWarning,
			Message: fmt.Sprintf("dropped %d embedded object/media stream(s)", embedded),
		})
	}
	if docEntry == nil {
		return nil, nil, fmt.Errorf("docx container has no word/document.xml: %w", ErrBinaryInput)
	}

	rc, err := docEntry.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("docx container has unreadable document.xml: %w", ErrBinaryInput)
	}
	defer rc.Close()

	text, warn, err := docxText(rc)
	if warn != nil {
		warnings = append(warnings, *warn)
	}
	if err != nil {
		return nil, nil, err
	}

	return newSourceDocument(normalizeNewlines(text)), warnings, nil
}

// docxText walks the WordprocessingML token stream. Paragraphs and breaks
// become newlines, tabs become tabs, everything else contributes only its
// character data.
func docxText(r io.Reader) (string, *Warning, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Salvage whatever was decoded before the malformation.
			if sb.Len() > 0 {
				w := Warning{MalformedContainerWarning, "document.xml truncated mid-stream"}
				return sb.String(), &w, nil
			}
			return "", nil, fmt.Errorf("malformed document.xml: %w", ErrBinaryInput)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil, nil
}
