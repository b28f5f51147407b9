package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codesift/codesift/internal/config"
	"github.com/codesift/codesift/internal/lang"
	"github.com/codesift/codesift/internal/segment"
)

// precisionFilter rejects false positives among heuristic candidates in
// mixed-content documents: prose that happens to be dense, lone variable
// assignments, fragments with broken structure. Explicitly delimited
// regions (fences) and whole files are exempt because the author or the
// path already declared them code. Rejected candidates become filler, so they
// stay accounted for.
type precisionFilter struct {
	cfg config.FilterConfig
}

func newPrecisionFilter(cfg config.FilterConfig) *precisionFilter {
	return &precisionFilter{cfg: cfg}
}

var (
	inlineVarPattern = regexp.MustCompile(`^\s*\w+\s*=\s*.+$`)
	sentencePattern  = regexp.MustCompile(`\.\s+[A-Z]`)
	filterWords      = regexp.MustCompile(`\b\w+\b`)
)

// proseIndicators are common English function words; a high ratio of them
// means the span is natural language, whatever its punctuation density.
var proseIndicators = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"and": {}, "or": {}, "but": {}, "however": {}, "therefore": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

// check decides whether a scored candidate survives into assembly.
// The returned reason is recorded on the filler span when it does not.
func (f *precisionFilter) check(o *outcome) (bool, string) {
	if o.region.Method == segment.MethodWholeFile || o.region.Method == segment.MethodFence {
		return true, ""
	}

	content := strings.TrimRight(o.content, "\n")
	lines := strings.Count(content, "\n") + 1
	chars := len(strings.TrimSpace(content))

	if o.confidence < f.cfg.MinConfidence {
		return false, fmt.Sprintf("confidence %.2f below threshold %.2f", o.confidence, f.cfg.MinConfidence)
	}
	if lines < f.cfg.MinLines {
		return false, fmt.Sprintf("too few lines: %d < %d", lines, f.cfg.MinLines)
	}
	if chars < f.cfg.MinChars {
		return false, fmt.Sprintf("too short: %d chars < %d", chars, f.cfg.MinChars)
	}

	if lines < 5 && isInlineAssignments(content) {
		return false, "inline variable assignments without surrounding structure"
	}

	if looksLikeProse(content, f.cfg.ProseRatio) {
		return false, "content reads as natural language prose"
	}

	if o.language == "python" && mixedIndentation(content) {
		return false, "mixed tab/space indentation"
	}

	if o.blockType == BlockFallback && !lang.BalancedBrackets(content) && o.region.Method == segment.MethodDensity {
		return false, "unbalanced brackets in heuristic candidate"
	}

	return true, ""
}

// isInlineAssignments reports whether every non-blank line is a bare
// "name = value" assignment, which is usually quoted prose config, not
// code worth a block.
func isInlineAssignments(content string) bool {
	var lines []string
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimSpace(l))
		}
	}
	if len(lines) == 0 || len(lines) > 3 {
		return false
	}
	for _, l := range lines {
		if !inlineVarPattern.MatchString(l) {
			return false
		}
	}
	return true
}

// looksLikeProse uses function-word frequency and sentence shape to catch
// natural language masquerading as code.
func looksLikeProse(content string, proseRatio float64) bool {
	words := filterWords.FindAllString(strings.ToLower(content), -1)
	if len(words) == 0 {
		return false
	}

	proseCount := 0
	for _, w := range words {
		if _, ok := proseIndicators[w]; ok {
			proseCount++
		}
	}
	if float64(proseCount)/float64(len(words)) > proseRatio {
		return true
	}

	return len(sentencePattern.FindAllString(content, -1)) > 2
}

func mixedIndentation(content string) bool {
	hasTabs := false
	hasSpaces := false
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "\t") {
			hasTabs = true
		}
		if strings.HasPrefix(line, " ") {
			hasSpaces = true
		}
	}
	return hasTabs && hasSpaces
}
