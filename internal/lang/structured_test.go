package lang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for structured-format grammars:
// - JSON: accepts objects and arrays, rejects trailing garbage, truncated
//   documents and bare quoted strings
// - YAML: accepts multi-line mappings, rejects broken indentation and
//   scalar-only content
// - XML: accepts well-formed documents, rejects unclosed tags and
//   element-free text
// - All three return the context error when the context is already done

func TestJSONGrammar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := jsonGrammar{}

	tests := []struct {
		name   string
		source string
		wantOK bool
	}{
		{"object", `{"name": "app", "port": 8080, "tags": ["a", "b"]}`, true},
		{"array", `[1, 2, 3]`, true},
		{"truncated", `{"name": "app"`, false},
		{"trailing garbage", `{"a": 1} extra`, false},
		{"bare string", `"just a string"`, false},
		{"not json", `def f(): pass`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := g.Parse(ctx, []byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, report.OK)
			if tt.wantOK {
				assert.Greater(t, report.NamedNodeCount, 0)
			}
		})
	}
}

func TestYAMLGrammar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := yamlGrammar{}

	tests := []struct {
		name   string
		source string
		wantOK bool
	}{
		{"mapping", "server:\n  host: localhost\n  port: 8080\n", true},
		{"list of mappings", "jobs:\n  - name: build\n    run: make\n", true},
		{"scalar only", "just a sentence\n", false},
		{"single line", "key: value", false},
		{"broken", "a:\n  - b\n c: d\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := g.Parse(ctx, []byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, report.OK)
		})
	}
}

func TestXMLGrammar(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	g := xmlGrammar{}

	tests := []struct {
		name   string
		source string
		wantOK bool
	}{
		{"document", `<?xml version="1.0"?><config><port>8080</port></config>`, true},
		{"nested", `<a><b attr="x"/></a>`, true},
		{"unclosed", `<a><b></a>`, false},
		{"no elements", `plain text`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := g.Parse(ctx, []byte(tt.source))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, report.OK)
		})
	}
}

func TestStructuredGrammars_HonorCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, g := range []GrammarAdapter{jsonGrammar{}, yamlGrammar{}, xmlGrammar{}} {
		_, err := g.Parse(ctx, []byte(`{"a": 1}`))
		assert.ErrorIs(t, err, context.Canceled)
	}
}
