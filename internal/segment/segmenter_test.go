package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesift/codesift/internal/document"
)

// Test Plan for the segmenter:
// - WholeFile wraps the entire buffer in one region, skips blank buffers
// - Fenced regions bound the interior only and carry the info string
// - Short fenced regions are kept (no minimum line count for fences)
// - An unterminated fence runs to end of document and is marked truncated
// - Indented runs below MinBlockLines are dropped
// - Indented code runs are proposed with the indent method
// - Dense technical spans are proposed by the density scanner
// - Prose-only documents propose nothing
// - Overlapping candidates dedupe to the longer region
// - Proposed regions never overlap and are ordered by start offset

func mustDoc(t *testing.T, text string) *document.SourceDocument {
	t.Helper()
	doc, warnings, err := document.Normalize([]byte(text), "doc.txt")
	require.NoError(t, err)
	require.Empty(t, warnings)
	return doc
}

func TestWholeFile(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	doc := mustDoc(t, "package main\n\nfunc main() {}\n")

	regions := s.WholeFile(doc, "go")
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, 0, r.StartOffset)
	assert.Equal(t, doc.Len(), r.EndOffset)
	assert.Equal(t, 1, r.StartLine)
	assert.Equal(t, doc.LineCount(), r.EndLine)
	assert.Equal(t, "go", r.DeclaredLanguage)
	assert.Equal(t, MethodWholeFile, r.Method)
	assert.Equal(t, 1.0, r.Seed)
}

func TestWholeFile_BlankBuffer(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	assert.Empty(t, s.WholeFile(mustDoc(t, "   \n\t\n"), "python"))
}

func TestMixedContent_FencedRegion(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	text := "Some prose first.\n\n```python\ndef f():\n    return 1\n```\n\nMore prose.\n"
	doc := mustDoc(t, text)

	regions := s.MixedContent(doc)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, MethodFence, r.Method)
	assert.Equal(t, "python", r.DeclaredLanguage)
	assert.Equal(t, 0.95, r.Seed)
	assert.False(t, r.Truncated)
	assert.Equal(t, "def f():\n    return 1\n", doc.Slice(r.StartOffset, r.EndOffset))
	assert.Equal(t, 4, r.StartLine)
	assert.Equal(t, 5, r.EndLine)
}

func TestMixedContent_ShortFenceIsKept(t *testing.T) {
	t.Parallel()

	s := New(Config{MinBlockLines: 3})
	doc := mustDoc(t, "```python\nx = 1\n```\n")

	regions := s.MixedContent(doc)
	require.Len(t, regions, 1)
	assert.Equal(t, MethodFence, regions[0].Method)
	assert.Equal(t, "x = 1\n", doc.Slice(regions[0].StartOffset, regions[0].EndOffset))
}

func TestMixedContent_UnterminatedFence(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	doc := mustDoc(t, "prose\n\n```js\nconst a = 1;\nconsole.log(a);\n")

	regions := s.MixedContent(doc)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, MethodFence, r.Method)
	assert.Equal(t, "js", r.DeclaredLanguage)
	assert.Equal(t, doc.Len(), r.EndOffset)
	assert.Equal(t, doc.LineCount(), r.EndLine)
	assert.True(t, r.Truncated)
}

func TestMixedContent_EmptyFenceProposesNothing(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	assert.Empty(t, s.MixedContent(mustDoc(t, "```\n```\n")))
}

func TestMixedContent_IndentedRun(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	text := "Install like this:\n\n" +
		"    def install(pkg):\n" +
		"        if pkg.ready():\n" +
		"            return pkg.run()\n" +
		"        return None\n\n" +
		"That is all.\n"
	doc := mustDoc(t, text)

	regions := s.MixedContent(doc)
	require.Len(t, regions, 1)
	assert.Equal(t, MethodIndent, regions[0].Method)
	assert.Equal(t, 0.85, regions[0].Seed)
	assert.Contains(t, doc.Slice(regions[0].StartOffset, regions[0].EndOffset), "def install")
}

func TestMixedContent_ShortIndentedRunDropped(t *testing.T) {
	t.Parallel()

	s := New(Config{MinBlockLines: 3})
	doc := mustDoc(t, "prose\n\n    x = compute()\n    y = x + 1\n\nprose again\n")

	assert.Empty(t, s.MixedContent(doc))
}

func TestMixedContent_DensityRegion(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	text := "intro\n" +
		"if (x == 1) { y = f(x); }\n" +
		"while (y < 10) { y += g(y); }\n" +
		"for (i = 0; i < n; i++) { h(i); }\n" +
		"if (done) { return y; }\n" +
		"switch (y) { case 1: break; }\n" +
		"outro\n"
	doc := mustDoc(t, text)

	regions := s.MixedContent(doc)
	require.NotEmpty(t, regions)
	assert.Equal(t, MethodDensity, regions[0].Method)
	assert.LessOrEqual(t, regions[0].Seed, 0.60)
	assert.Greater(t, regions[0].Seed, 0.0)
}

func TestMixedContent_ProseProposesNothing(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	text := "This document explains the deployment procedure.\n" +
		"First you prepare the environment.\n" +
		"Then you run the standard checks.\n" +
		"Finally you confirm the release notes.\n" +
		"Nothing here resembles a program.\n"

	assert.Empty(t, s.MixedContent(mustDoc(t, text)))
}

func TestMixedContent_RegionsNeverOverlap(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	text := "```python\ndef a():\n    return 1\n```\n" +
		"    def b():\n        return 2\n    b()\n" +
		"if (x) { y(); }\nwhile (z) { w(); }\nfor (;;) { q(); }\nif (k) { m(); }\nif (j) { n(); }\n"
	doc := mustDoc(t, text)

	regions := s.MixedContent(doc)
	require.NotEmpty(t, regions)

	for i := 1; i < len(regions); i++ {
		assert.GreaterOrEqual(t, regions[i].StartOffset, regions[i-1].EndOffset,
			"regions %d and %d overlap", i-1, i)
	}
}

func TestTechnicalDensity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, technicalDensity("   \n"))
	assert.Greater(t, technicalDensity("if (x == 1) { return f(x); }"), technicalDensity("plain words here"))
}

func TestComplexity(t *testing.T) {
	t.Parallel()

	code := "def f(x):\n    if x:\n        return {x: 1}\n"
	assert.GreaterOrEqual(t, complexity(code), 3)
	assert.Equal(t, 0, complexity("hello world"))
	assert.Less(t, complexity("just a sentence."), 2)
}

func TestDedupe_PrefersLongerRegion(t *testing.T) {
	t.Parallel()

	long := Region{StartOffset: 0, EndOffset: 100, StartLine: 1, EndLine: 10, Method: MethodIndent, Seed: 0.85}
	short := Region{StartOffset: 40, EndOffset: 60, StartLine: 5, EndLine: 6, Method: MethodDensity, Seed: 0.30}
	after := Region{StartOffset: 120, EndOffset: 150, StartLine: 13, EndLine: 15, Method: MethodDensity, Seed: 0.30}

	kept := dedupe([]Region{short, long, after})
	require.Len(t, kept, 2)
	assert.Equal(t, long, kept[0])
	assert.Equal(t, after, kept[1])
}

func TestLineRegion_TilesWholeLines(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	doc := mustDoc(t, "aa\nbb\ncc\n")

	r := s.lineRegion(doc, 2, 2, MethodIndent, 0.85)
	assert.Equal(t, "bb\n", doc.Slice(r.StartOffset, r.EndOffset))

	last := s.lineRegion(doc, 3, 3, MethodIndent, 0.85)
	assert.Equal(t, "cc\n", doc.Slice(last.StartOffset, last.EndOffset))
	assert.Equal(t, doc.Len(), last.EndOffset)
}

func TestMixedContent_FenceClaimsBeatIndentation(t *testing.T) {
	t.Parallel()

	// The fence interior is indented; the indent scanner must not
	// re-propose lines the fence already claimed.
	s := New(Config{})
	text := "```python\n    def f():\n        return 1\n    f()\n```\n"
	doc := mustDoc(t, text)

	regions := s.MixedContent(doc)
	require.Len(t, regions, 1)
	assert.Equal(t, MethodFence, regions[0].Method)
}

func TestMixedContent_DeterministicProposals(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	text := strings.Repeat("prose line\n", 3) +
		"```go\nfunc main() {}\n```\n" +
		strings.Repeat("more prose\n", 3)
	doc := mustDoc(t, text)

	first := s.MixedContent(doc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.MixedContent(doc))
	}
}
