package document

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// normalizeHTML extracts the visible text of an HTML page. Script and
// style bodies are dropped; block-level elements produce line breaks so
// preformatted code regions keep their shape.
func normalizeHTML(raw []byte) (*SourceDocument, []Warning, error) {
	text, decodeWarnings, err := decodeBytes(raw)
	if err != nil {
		return nil, nil, err
	}

	root, err := html.Parse(bytes.NewReader([]byte(text)))
	if err != nil {
		return nil, nil, fmt.Errorf("unparseable HTML: %w", ErrBinaryInput)
	}

	var sb strings.Builder
	collectText(root, &sb)

	return newSourceDocument(normalizeNewlines(sb.String())), decodeWarnings, nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"pre": true, "blockquote": true, "section": true, "article": true,
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		sb.WriteByte('\n')
	}
}
