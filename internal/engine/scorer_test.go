package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codesift/codesift/internal/config"
	"github.com/codesift/codesift/internal/lang"
	"github.com/codesift/codesift/internal/segment"
)

// Test Plan for the confidence scorer:
// - AST blocks never score below the fallback ceiling, whatever the
//   penalties
// - AST blocks never exceed 1.0, whatever the bonuses
// - Fallback blocks never exceed the fallback ceiling
// - Unknown blocks stay inside [0.02, unknown_ceiling]
// - Richer parse trees score higher than sparse ones
// - Stronger heuristic evidence scores higher than weak evidence
// - Short regions are penalized; whole-file regions skip the large
//   fraction penalty
// - Scoring is deterministic

func testOutcome(blockType BlockType, language, content string, method segment.Method) *outcome {
	return &outcome{
		region: segment.Region{
			StartOffset: 0,
			EndOffset:   len(content),
			StartLine:   1,
			EndLine:     1,
			Method:      method,
		},
		content:   content,
		language:  language,
		blockType: blockType,
	}
}

func TestScore_ASTFloorHolds(t *testing.T) {
	t.Parallel()

	weights := config.Default().Scoring
	weights.ASTBase = weights.FallbackCeiling // worst allowed configuration
	s := newScorer(weights)

	// One line, zero named nodes, unbalanced content: every penalty on,
	// no bonus.
	o := testOutcome(BlockAST, "python", "def f(:", segment.MethodFence)
	conf := s.score(o, 1000)

	assert.GreaterOrEqual(t, conf, weights.FallbackCeiling)
	assert.LessOrEqual(t, conf, 1.0)
}

func TestScore_ASTCapsAtOne(t *testing.T) {
	t.Parallel()

	s := newScorer(config.Default().Scoring)

	o := testOutcome(BlockAST, "python", "def f():\n    return 1\n    x = 2\n    y = 3\n    z = 4\n", segment.MethodWholeFile)
	o.region.EndLine = 5
	o.report = lang.ParseReport{OK: true, NamedNodeCount: 100000}

	assert.LessOrEqual(t, s.score(o, o.region.EndOffset), 1.0)
}

func TestScore_FallbackNeverReachesASTBand(t *testing.T) {
	t.Parallel()

	weights := config.Default().Scoring
	s := newScorer(weights)

	o := testOutcome(BlockFallback, "python", "def f():\n    return 1\nprint(f())\nmore()\nlines()\n", segment.MethodIndent)
	o.region.EndLine = 5
	o.evidence = lang.Evidence{
		RuleScore:      1.0,
		MatchedRules:   5,
		KeywordDensity: 1.0,
		TerminatorRate: 1.0,
		BracketBalance: true,
		Claimed:        true,
	}

	conf := s.score(o, 10000)
	assert.LessOrEqual(t, conf, weights.FallbackCeiling)
	assert.GreaterOrEqual(t, conf, 0.05)
}

func TestScore_UnknownStaysInLowestBand(t *testing.T) {
	t.Parallel()

	weights := config.Default().Scoring
	s := newScorer(weights)

	strong := testOutcome(BlockFallback, lang.Unknown, "a { b } c;\nd { e } f;\ng { h } i;\n", segment.MethodWholeFile)
	strong.evidence = lang.Evidence{RuleScore: 1.0, KeywordDensity: 1.0, TerminatorRate: 1.0, BracketBalance: true}

	weak := testOutcome(BlockFallback, lang.Unknown, "?", segment.MethodWholeFile)

	for _, o := range []*outcome{strong, weak} {
		conf := s.score(o, o.region.EndOffset)
		assert.GreaterOrEqual(t, conf, 0.02)
		assert.LessOrEqual(t, conf, weights.UnknownCeiling)
	}
}

func TestScore_RicherTreesScoreHigher(t *testing.T) {
	t.Parallel()

	s := newScorer(config.Default().Scoring)
	content := "def f():\n    return 1\n\ndef g():\n    return 2\n"

	sparse := testOutcome(BlockAST, "python", content, segment.MethodWholeFile)
	sparse.region.EndLine = 5
	sparse.report = lang.ParseReport{OK: true, NamedNodeCount: 5}

	rich := testOutcome(BlockAST, "python", content, segment.MethodWholeFile)
	rich.region.EndLine = 5
	rich.report = lang.ParseReport{OK: true, NamedNodeCount: 200}

	assert.Greater(t, s.score(rich, len(content)), s.score(sparse, len(content)))
}

func TestScore_StrongerEvidenceScoresHigher(t *testing.T) {
	t.Parallel()

	s := newScorer(config.Default().Scoring)
	content := "line one;\nline two;\nline three;\nline four;\nline five;\n"

	weak := testOutcome(BlockFallback, "sql", content, segment.MethodDensity)
	weak.region.EndLine = 5
	weak.evidence = lang.Evidence{RuleScore: 0.15, TerminatorRate: 0.2}

	strong := testOutcome(BlockFallback, "sql", content, segment.MethodDensity)
	strong.region.EndLine = 5
	strong.evidence = lang.Evidence{RuleScore: 0.9, KeywordDensity: 0.3, TerminatorRate: 1.0, BracketBalance: true}

	assert.Greater(t, s.score(strong, 10000), s.score(weak, 10000))
}

func TestScore_ShortRegionPenalized(t *testing.T) {
	t.Parallel()

	s := newScorer(config.Default().Scoring)
	report := lang.ParseReport{OK: true, NamedNodeCount: 50}

	short := testOutcome(BlockAST, "python", "x = 1\n", segment.MethodWholeFile)
	short.report = report

	long := testOutcome(BlockAST, "python", "a = 1\nb = 2\nc = 3\nd = 4\ne = 5\nf = 6\n", segment.MethodWholeFile)
	long.region.EndLine = 6
	long.region.EndOffset = len(long.content)
	long.report = report

	assert.Less(t, s.score(short, 10000), s.score(long, 10000))
}

func TestScore_WholeFileSkipsLargeFractionPenalty(t *testing.T) {
	t.Parallel()

	s := newScorer(config.Default().Scoring)
	content := "a = 1\nb = 2\nc = 3\nd = 4\ne = 5\n"
	report := lang.ParseReport{OK: true, NamedNodeCount: 50}

	whole := testOutcome(BlockAST, "python", content, segment.MethodWholeFile)
	whole.region.EndLine = 5
	whole.report = report

	dense := testOutcome(BlockAST, "python", content, segment.MethodDensity)
	dense.region.EndLine = 5
	dense.report = report

	// Both cover the entire (tiny) document; only the density region pays
	// the mis-segmentation penalty.
	docLen := len(content)
	assert.Greater(t, s.score(whole, docLen), s.score(dense, docLen))
}

func TestScore_Deterministic(t *testing.T) {
	t.Parallel()

	s := newScorer(config.Default().Scoring)
	o := testOutcome(BlockFallback, "shell", "echo hi\nexport A=1\ndone\n", segment.MethodIndent)
	o.region.EndLine = 3
	o.evidence = lang.Evidence{RuleScore: 0.4, KeywordDensity: 0.2, TerminatorRate: 0.1, BracketBalance: true}

	first := s.score(o, 500)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.score(o, 500))
	}
}
