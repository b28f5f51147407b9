package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for fallback rulesets:
// - Evaluate sums matched rule weights and caps the score at 1
// - Keyword density is matched keywords over total words
// - Terminator rate counts terminator lines over non-blank lines
// - Single-match rulesets claim on any rule hit
// - Config/log rulesets require MinMatches corroborating rules
// - BalancedBrackets detects nesting errors and unclosed brackets

func TestEvaluate_CLikeFunction(t *testing.T) {
	t.Parallel()

	content := "public int add(int a, int b) {\n    return a + b;\n}\n"
	ev := cLikeRuleset.Evaluate(content)

	assert.True(t, ev.Claimed)
	assert.Greater(t, ev.RuleScore, 0.0)
	assert.LessOrEqual(t, ev.RuleScore, 1.0)
	assert.Greater(t, ev.KeywordDensity, 0.0)
	assert.Greater(t, ev.TerminatorRate, 0.0)
	assert.True(t, ev.BracketBalance)
}

func TestEvaluate_ScoreCapsAtOne(t *testing.T) {
	t.Parallel()

	// Hits every python rule.
	content := "import os\n@cached\nclass App:\n    def run(self):\n        if True:\n            pass\n"
	ev := pythonRuleset.Evaluate(content)

	assert.Equal(t, 5, ev.MatchedRules)
	assert.Equal(t, 1.0, ev.RuleScore)
	assert.True(t, ev.Claimed)
}

func TestEvaluate_ProseClaimsNothing(t *testing.T) {
	t.Parallel()

	content := "The quick brown fox jumps over the lazy dog.\nIt was a bright day.\n"
	assert.False(t, pythonRuleset.Evaluate(content).Claimed)
	assert.False(t, sqlRuleset.Evaluate(content).Claimed)
	assert.False(t, ciscoRuleset.Evaluate(content).Claimed)
}

func TestEvaluate_ConfigFamiliesNeedCorroboration(t *testing.T) {
	t.Parallel()

	// One cisco pattern alone is not enough.
	single := "interface GigabitEthernet0/1\n"
	assert.False(t, ciscoRuleset.Evaluate(single).Claimed)

	// Two independent pattern families corroborate.
	full := "interface GigabitEthernet0/1\n ip address 192.168.1.1 255.255.255.0\naccess-list 101 permit tcp any any\n"
	ev := ciscoRuleset.Evaluate(full)
	assert.True(t, ev.Claimed)
	assert.GreaterOrEqual(t, ev.MatchedRules, 2)
}

func TestEvaluate_LogLines(t *testing.T) {
	t.Parallel()

	content := "2024-03-01 10:22:01 ERROR connection refused from 10.0.0.5\n2024-03-01 10:22:02 INFO retrying\n"
	ev := logRuleset.Evaluate(content)
	assert.True(t, ev.Claimed)
}

func TestEvaluate_TerminatorRate(t *testing.T) {
	t.Parallel()

	content := "int a = 1;\nint b = 2;\nsome prose line\n\n"
	ev := cLikeRuleset.Evaluate(content)
	assert.InDelta(t, 2.0/3.0, ev.TerminatorRate, 1e-9)
}

func TestEvaluate_UnknownRulesetNeverClaims(t *testing.T) {
	t.Parallel()

	ev := unknownRuleset.Evaluate("anything at all { } ; def select")
	assert.False(t, ev.Claimed)
	assert.Equal(t, 0.0, ev.RuleScore)
}

func TestBalancedBrackets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    bool
	}{
		{"", true},
		{"func f() { return []int{1} }", true},
		{"def f(:", false},
		{"{[}]", false},
		{"alpha ) beta", false},
		{strings.Repeat("(", 3) + strings.Repeat(")", 3), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BalancedBrackets(tt.content), "content %q", tt.content)
	}
}
