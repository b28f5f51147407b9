package lang

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterGrammar adapts a tree-sitter language to the GrammarAdapter
// contract. A fresh parser is created per call, so the adapter is safe for
// concurrent use.
type treeSitterGrammar struct {
	language *sitter.Language
	lang     string
}

func newTreeSitterGrammar(language *sitter.Language, lang string) *treeSitterGrammar {
	return &treeSitterGrammar{
		language: language,
		lang:     lang,
	}
}

// Parse parses source and reports structural validity. The parse runs in
// its own goroutine so the context deadline is enforced as a wall-clock
// budget around the call; on timeout the in-flight parse is abandoned and
// cleans up after itself. Parser panics are recovered and reported as
// parse errors, never propagated.
func (g *treeSitterGrammar) Parse(ctx context.Context, source []byte) (ParseReport, error) {
	type outcome struct {
		report ParseReport
		err    error
	}

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("%s parser panic: %v", g.lang, r)}
			}
		}()
		report, err := g.parse(source)
		ch <- outcome{report: report, err: err}
	}()

	select {
	case <-ctx.Done():
		return ParseReport{}, ctx.Err()
	case out := <-ch:
		return out.report, out.err
	}
}

func (g *treeSitterGrammar) parse(source []byte) (ParseReport, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(g.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return ParseReport{}, fmt.Errorf("%s parser produced no tree", g.lang)
	}
	defer tree.Close()

	report := ParseReport{}
	countNodes(tree.RootNode(), &report)
	report.OK = report.ErrorNodeCount == 0 && report.MissingNodeCount == 0

	// An empty tree over non-empty input means the grammar recognized
	// nothing; treat it as a failed parse rather than a vacuous success.
	if report.NamedNodeCount <= 1 && len(source) > 0 {
		report.OK = false
	}

	return report, nil
}

func countNodes(node *sitter.Node, report *ParseReport) {
	if node == nil {
		return
	}
	if node.IsNamed() {
		report.NamedNodeCount++
	}
	if node.IsError() {
		report.ErrorNodeCount++
	}
	if node.IsMissing() {
		report.MissingNodeCount++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		countNodes(node.Child(uint(i)), report)
	}
}
