package engine

import (
	"strings"

	"github.com/codesift/codesift/internal/config"
	"github.com/codesift/codesift/internal/lang"
	"github.com/codesift/codesift/internal/segment"
)

// scorer assigns confidence scores. It is a pure function of the region
// outcome and the weight table: no randomness, no clock, so identical
// input always yields identical scores.
type scorer struct {
	weights config.ScoringConfig
}

func newScorer(weights config.ScoringConfig) *scorer {
	return &scorer{weights: weights}
}

// score computes confidence = base(block_type) + structural_bonus −
// size_penalty, clamped so grammar-validated blocks can never rank below
// the fallback ceiling and unknown blocks stay in the lowest band.
func (s *scorer) score(o *outcome, docLen int) float64 {
	w := s.weights

	var conf float64
	switch {
	case o.blockType == BlockAST:
		conf = w.ASTBase + s.astBonus(o) - s.sizePenalty(o, docLen)
		return clamp(conf, w.FallbackCeiling, 1)

	case o.language == lang.Unknown:
		conf = w.FallbackBase*0.5 + s.fallbackBonus(o)*0.5 - s.sizePenalty(o, docLen)
		return clamp(conf, 0.02, w.UnknownCeiling)

	default:
		conf = w.FallbackBase + s.fallbackBonus(o) - s.sizePenalty(o, docLen)
		return clamp(conf, 0.05, w.FallbackCeiling)
	}
}

// astBonus rewards structural richness of a clean parse: node density up
// to the configured maximum, in the spirit of "more recognized structure,
// more certainty".
func (s *scorer) astBonus(o *outcome) float64 {
	nodes := float64(o.report.NamedNodeCount)
	bonus := nodes / 500
	if bonus > 0.45 {
		bonus = 0.45
	}
	if !lang.BalancedBrackets(o.content) {
		bonus -= 0.5
	}
	if bonus < 0 {
		bonus = 0
	}
	return bonus * s.weights.ASTBonusMax / 0.45
}

// fallbackBonus is built from the heuristic evidence. Fallback blocks have
// no grammar guarantee, so the structural signal carries more weight here.
func (s *scorer) fallbackBonus(o *outcome) float64 {
	ev := o.evidence

	signal := 0.5 * ev.RuleScore
	kd := ev.KeywordDensity * 4
	if kd > 1 {
		kd = 1
	}
	signal += 0.25 * kd
	signal += 0.15 * ev.TerminatorRate
	if ev.BracketBalance {
		signal += 0.10
	}

	return signal * s.weights.FallbackBonusMax
}

// sizePenalty penalizes very short regions (high false-positive risk) and
// regions that swallow an implausible fraction of a mixed document
// (likely mis-segmentation). Whole-file regions legitimately cover the
// entire document and take no fraction penalty.
func (s *scorer) sizePenalty(o *outcome, docLen int) float64 {
	w := s.weights
	penalty := 0.0

	lines := strings.Count(strings.TrimRight(o.content, "\n"), "\n") + 1
	if lines < w.ShortRegionLines {
		missing := float64(w.ShortRegionLines-lines) / float64(w.ShortRegionLines)
		penalty += w.ShortRegionPenalty * missing
	}

	if o.region.Method != segment.MethodWholeFile && docLen > 0 {
		fraction := float64(o.region.EndOffset-o.region.StartOffset) / float64(docLen)
		if fraction > w.LargeRegionFraction {
			penalty += w.LargeRegionPenalty
		}
	}

	return penalty
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
