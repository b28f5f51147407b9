package lang

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// jsonGrammar validates a region as a single JSON document.
type jsonGrammar struct{}

func (jsonGrammar) Parse(ctx context.Context, source []byte) (ParseReport, error) {
	if err := ctx.Err(); err != nil {
		return ParseReport{}, err
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(string(source)))
	if err := dec.Decode(&v); err != nil {
		return ParseReport{ErrorNodeCount: 1}, nil
	}
	// Trailing non-whitespace content disqualifies the region.
	if dec.More() {
		return ParseReport{ErrorNodeCount: 1}, nil
	}
	if _, ok := v.(string); ok {
		// A bare quoted string parses as JSON but is not a document
		// worth claiming.
		return ParseReport{ErrorNodeCount: 1}, nil
	}
	return ParseReport{OK: true, NamedNodeCount: jsonNodeCount(v)}, nil
}

func jsonNodeCount(v any) int {
	switch t := v.(type) {
	case map[string]any:
		n := 1
		for _, child := range t {
			n += jsonNodeCount(child)
		}
		return n
	case []any:
		n := 1
		for _, child := range t {
			n += jsonNodeCount(child)
		}
		return n
	default:
		return 1
	}
}

// yamlGrammar validates a region as YAML. YAML accepts almost any scalar,
// so the adapter additionally requires mapping structure before claiming
// the region.
type yamlGrammar struct{}

func (yamlGrammar) Parse(ctx context.Context, source []byte) (ParseReport, error) {
	if err := ctx.Err(); err != nil {
		return ParseReport{}, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(source, &node); err != nil {
		return ParseReport{ErrorNodeCount: 1}, nil
	}
	content := string(source)
	if !strings.Contains(content, ":") || !strings.Contains(strings.TrimSpace(content), "\n") {
		return ParseReport{ErrorNodeCount: 1}, nil
	}
	return ParseReport{OK: true, NamedNodeCount: yamlNodeCount(&node)}, nil
}

func yamlNodeCount(n *yaml.Node) int {
	count := 1
	for _, child := range n.Content {
		count += yamlNodeCount(child)
	}
	return count
}

// xmlGrammar validates a region as a well-formed XML document.
type xmlGrammar struct{}

func (xmlGrammar) Parse(ctx context.Context, source []byte) (ParseReport, error) {
	if err := ctx.Err(); err != nil {
		return ParseReport{}, err
	}
	dec := xml.NewDecoder(strings.NewReader(string(source)))
	nodes := 0
	sawElement := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParseReport{ErrorNodeCount: 1}, nil
		}
		if _, ok := tok.(xml.StartElement); ok {
			sawElement = true
		}
		nodes++
	}
	if !sawElement {
		return ParseReport{ErrorNodeCount: 1}, nil
	}
	return ParseReport{OK: true, NamedNodeCount: nodes}, nil
}
