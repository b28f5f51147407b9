// Package segment splits normalized documents into candidate code regions.
// Candidates are proposals only: the engine's validation paths decide what
// each region actually is.
package segment

import (
	"regexp"
	"sort"
	"strings"

	"github.com/codesift/codesift/internal/document"
)

// Method records which strategy proposed a region.
type Method string

const (
	MethodWholeFile Method = "whole-file"
	MethodFence     Method = "fence"
	MethodIndent    Method = "indentation"
	MethodDensity   Method = "density"
)

// Region is a candidate span proposed by the segmenter, not yet validated.
// Offsets are byte offsets into the normalized buffer; lines are 1-based
// and inclusive.
type Region struct {
	StartOffset int
	EndOffset   int
	StartLine   int
	EndLine     int

	// DeclaredLanguage is set when the strategy knows the language up
	// front (fence info string, file extension); empty otherwise.
	DeclaredLanguage string

	Method Method

	// Seed is the segmenter's prior confidence that the region is code
	// at all, before any validation.
	Seed float64

	// Truncated marks a fenced region whose closing fence never arrived.
	// The content may be cut mid-construct, so validation must not trust
	// it as a complete unit.
	Truncated bool
}

// Config tunes segmentation heuristics.
type Config struct {
	MinBlockLines    int     // minimum lines for indent/density candidates
	DensityWindow    int     // sliding window height in lines
	DensityThreshold float64 // combined technical density cutoff
}

// DefaultConfig mirrors the production tuning.
func DefaultConfig() Config {
	return Config{
		MinBlockLines:    3,
		DensityWindow:    5,
		DensityThreshold: 0.15,
	}
}

// Segmenter proposes candidate regions. It is stateless and safe for
// concurrent use.
type Segmenter struct {
	cfg Config
}

// New creates a segmenter. Zero config fields fall back to defaults.
func New(cfg Config) *Segmenter {
	def := DefaultConfig()
	if cfg.MinBlockLines <= 0 {
		cfg.MinBlockLines = def.MinBlockLines
	}
	if cfg.DensityWindow <= 0 {
		cfg.DensityWindow = def.DensityWindow
	}
	if cfg.DensityThreshold <= 0 {
		cfg.DensityThreshold = def.DensityThreshold
	}
	return &Segmenter{cfg: cfg}
}

// WholeFile wraps the entire buffer in a single region with a declared
// language. Used for repository ingestion, where the path already implies
// the language.
func (s *Segmenter) WholeFile(doc *document.SourceDocument, declaredLanguage string) []Region {
	if strings.TrimSpace(doc.Text()) == "" {
		return nil
	}
	return []Region{{
		StartOffset:      0,
		EndOffset:        doc.Len(),
		StartLine:        1,
		EndLine:          doc.LineCount(),
		DeclaredLanguage: declaredLanguage,
		Method:           MethodWholeFile,
		Seed:             1.0,
	}}
}

// MixedContent scans a prose/code document with all strategies in priority
// order: fenced ranges first, then indentation, then density over whatever
// is left. Overlaps are resolved by preferring the longer region.
func (s *Segmenter) MixedContent(doc *document.SourceDocument) []Region {
	lines := doc.Lines()
	if len(lines) == 0 {
		return nil
	}

	var candidates []Region
	claimed := make([]bool, len(lines)+1) // 1-based

	fences := s.fencedRegions(doc, lines)
	candidates = append(candidates, fences...)
	markClaimed(claimed, fences)

	indents := s.indentedRegions(doc, lines, claimed)
	candidates = append(candidates, indents...)
	markClaimed(claimed, indents)

	candidates = append(candidates, s.densityRegions(doc, lines, claimed)...)

	return dedupe(candidates)
}

var fencePattern = regexp.MustCompile("^```\\s*([\\w+-]*)")

// fencedRegions extracts ``` fenced ranges. The region bounds only the
// fence interior. An unterminated fence is still proposed (running to end
// of document) so truncated snippets degrade to fallback instead of
// vanishing.
func (s *Segmenter) fencedRegions(doc *document.SourceDocument, lines []string) []Region {
	var regions []Region

	inFence := false
	interiorStart := 0 // 1-based first interior line
	declared := ""

	flush := func(endLine int, truncated bool) {
		if endLine < interiorStart {
			return
		}
		r := s.lineRegion(doc, interiorStart, endLine, MethodFence, 0.95)
		r.DeclaredLanguage = declared
		r.Truncated = truncated
		if strings.TrimSpace(doc.Slice(r.StartOffset, r.EndOffset)) != "" {
			regions = append(regions, r)
		}
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inFence {
			if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
				inFence = true
				interiorStart = i + 2
				declared = m[1]
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			flush(i, false) // line i is the closing fence; interior ends at i (1-based i)
			inFence = false
			declared = ""
		}
	}
	if inFence {
		flush(len(lines), true)
	}

	return regions
}

// indentedRegions finds runs of consistently indented lines (4+ spaces or
// a tab) outside already-claimed spans, keeping only runs that look like
// code by density or structure.
func (s *Segmenter) indentedRegions(doc *document.SourceDocument, lines []string, claimed []bool) []Region {
	var regions []Region

	runStart := 0 // 1-based, 0 = no open run
	flush := func(endLine int) {
		if runStart == 0 {
			return
		}
		start := runStart
		runStart = 0
		if endLine-start+1 < s.cfg.MinBlockLines {
			return
		}
		r := s.lineRegion(doc, start, endLine, MethodIndent, 0.85)
		content := doc.Slice(r.StartOffset, r.EndOffset)
		if technicalDensity(content) > s.cfg.DensityThreshold || complexity(content) >= 2 {
			regions = append(regions, r)
		}
	}

	for i, line := range lines {
		lineNo := i + 1
		if claimed[lineNo] {
			flush(lineNo - 1)
			continue
		}
		indented := strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "    ")
		if indented && strings.TrimSpace(line) != "" {
			if runStart == 0 {
				runStart = lineNo
			}
		} else {
			flush(lineNo - 1)
		}
	}
	flush(len(lines))

	return regions
}

// densityRegions slides a window over unclaimed lines and proposes spans
// whose technical character density crosses the threshold. Structural
// complexity gates out high-density prose (tables, punctuation runs).
func (s *Segmenter) densityRegions(doc *document.SourceDocument, lines []string, claimed []bool) []Region {
	var regions []Region
	window := s.cfg.DensityWindow
	threshold := s.cfg.DensityThreshold

	i := 0
	for i <= len(lines)-window {
		lineNo := i + 1
		if claimed[lineNo] {
			i++
			continue
		}

		windowText := strings.Join(lines[i:i+window], "\n")
		density := technicalDensity(windowText)
		if density <= threshold {
			i++
			continue
		}

		// Expand forward while lines stay dense and unclaimed.
		end := i + window
		for end < len(lines) && !claimed[end+1] && technicalDensity(lines[end]) > threshold*0.8 {
			end++
		}

		if end-i >= s.cfg.MinBlockLines {
			content := strings.Join(lines[i:end], "\n")
			if complexity(content) >= 3 || density > 0.30 {
				seed := density
				if seed > 0.60 {
					seed = 0.60
				}
				regions = append(regions, s.lineRegion(doc, i+1, end, MethodDensity, seed))
			}
		}
		i = end
	}

	return regions
}

// lineRegion builds a Region covering whole lines start..end (1-based,
// inclusive), line terminators included so regions tile the buffer.
func (s *Segmenter) lineRegion(doc *document.SourceDocument, startLine, endLine int, method Method, seed float64) Region {
	return Region{
		StartOffset: doc.LineStartOffset(startLine),
		EndOffset:   doc.LineStartOffset(endLine + 1),
		StartLine:   startLine,
		EndLine:     endLine,
		Method:      method,
		Seed:        seed,
	}
}

func markClaimed(claimed []bool, regions []Region) {
	for _, r := range regions {
		for l := r.StartLine; l <= r.EndLine && l < len(claimed); l++ {
			claimed[l] = true
		}
	}
}

// dedupe resolves overlapping candidates from different heuristics: the
// longer contiguous region wins, then the higher seed, then the earlier
// start. Output is ordered by start offset.
func dedupe(regions []Region) []Region {
	if len(regions) == 0 {
		return nil
	}

	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		li := sorted[i].EndOffset - sorted[i].StartOffset
		lj := sorted[j].EndOffset - sorted[j].StartOffset
		if li != lj {
			return li > lj
		}
		if sorted[i].Seed != sorted[j].Seed {
			return sorted[i].Seed > sorted[j].Seed
		}
		return sorted[i].StartOffset < sorted[j].StartOffset
	})

	var kept []Region
	for _, r := range sorted {
		overlaps := false
		for _, k := range kept {
			if r.StartOffset < k.EndOffset && k.StartOffset < r.EndOffset {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, r)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].StartOffset < kept[j].StartOffset })
	return kept
}

// technicalChars are characters that suggest code rather than prose.
const technicalChars = "{}[]()<>;:=+-*/%&|!~^#@$"

var codeKeywords = map[string]struct{}{
	"def": {}, "class": {}, "function": {}, "var": {}, "let": {}, "const": {},
	"import": {}, "export": {}, "if": {}, "else": {}, "for": {}, "while": {},
	"return": {}, "void": {}, "int": {}, "string": {}, "public": {},
	"private": {}, "static": {}, "async": {}, "await": {}, "try": {}, "catch": {},
}

// technicalDensity combines technical character density with programming
// keyword density into one [0,1] signal.
func technicalDensity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	techCount := 0
	for _, ch := range text {
		if strings.ContainsRune(technicalChars, ch) {
			techCount++
		}
	}

	words := strings.Fields(text)
	keywordCount := 0
	for _, w := range words {
		if _, ok := codeKeywords[strings.ToLower(w)]; ok {
			keywordCount++
		}
	}

	charDensity := float64(techCount) / float64(max(len(text), 1))
	keywordDensity := float64(keywordCount) / float64(max(len(words), 1))

	return charDensity*0.7 + keywordDensity*0.3
}

var (
	functionPattern    = regexp.MustCompile(`\bdef\b|\bfunction\b|\bpublic\b|\bprivate\b|\bfunc\b`)
	controlFlowPattern = regexp.MustCompile(`\bif\b|\bfor\b|\bwhile\b|\bswitch\b`)
	typeDeclPattern    = regexp.MustCompile(`\bclass\b|\binterface\b|\bstruct\b`)
)

// complexity scores structural code markers in a span.
func complexity(text string) int {
	score := 0
	score += len(functionPattern.FindAllString(text, -1))
	score += len(controlFlowPattern.FindAllString(text, -1))
	score += len(typeDeclPattern.FindAllString(text, -1))
	if strings.Contains(text, "{") && strings.Contains(text, "}") {
		score++
	}
	if strings.Contains(text, "(") && strings.Contains(text, ")") {
		score++
	}
	return score
}
