package lang

import (
	"regexp"
	"strings"
)

// Rule is one weighted pattern in a fallback ruleset. Rules are declarative
// data: adding a language never adds control flow.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Weight  float64
}

// Ruleset is the ordered heuristic rule list applied when a structural
// parse is unavailable or fails.
type Ruleset struct {
	Family Family

	// Rules are evaluated in order; the score is the sum of matched
	// weights capped at 1.
	Rules []Rule

	// Keywords feed the keyword-density signal.
	Keywords map[string]struct{}

	// Terminator matches statement endings for the family (";", line
	// continuation, etc.). May be nil for families without terminators.
	Terminator *regexp.Regexp

	// MinMatches is the number of distinct matched rules required before
	// the ruleset claims the region at all (config/log families require
	// corroborating evidence, per-language rulesets accept any match).
	MinMatches int
}

// Evidence is the structural signal a ruleset extracted from a region.
type Evidence struct {
	RuleScore      float64 // sum of matched rule weights, capped at 1
	MatchedRules   int
	KeywordDensity float64 // matched keywords / total words
	TerminatorRate float64 // terminator lines / non-blank lines
	BracketBalance bool
	Claimed        bool // MatchedRules >= MinMatches
}

// Evaluate runs the ruleset over content and returns the collected
// evidence. It is a pure function of its input.
func (rs *Ruleset) Evaluate(content string) Evidence {
	var ev Evidence

	for _, r := range rs.Rules {
		if r.Pattern.MatchString(content) {
			ev.MatchedRules++
			ev.RuleScore += r.Weight
		}
	}
	if ev.RuleScore > 1 {
		ev.RuleScore = 1
	}

	if len(rs.Keywords) > 0 {
		words := wordPattern.FindAllString(content, -1)
		if len(words) > 0 {
			hits := 0
			for _, w := range words {
				if _, ok := rs.Keywords[strings.ToLower(w)]; ok {
					hits++
				}
			}
			ev.KeywordDensity = float64(hits) / float64(len(words))
		}
	}

	if rs.Terminator != nil {
		total := 0
		hits := 0
		for _, line := range strings.Split(content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			total++
			if rs.Terminator.MatchString(line) {
				hits++
			}
		}
		if total > 0 {
			ev.TerminatorRate = float64(hits) / float64(total)
		}
	}

	ev.BracketBalance = BalancedBrackets(content)
	min := rs.MinMatches
	if min == 0 {
		min = 1
	}
	ev.Claimed = ev.MatchedRules >= min

	return ev
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// BalancedBrackets reports whether (), [] and {} nest correctly. Brackets
// inside string literals are not excluded; the signal is heuristic.
func BalancedBrackets(content string) bool {
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	var stack []rune
	for _, ch := range content {
		switch ch {
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[ch] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
