package lang

import (
	"sort"
	"strings"
)

// Candidate is a language ranked by content-signature score.
type Candidate struct {
	Profile *Profile
	Score   float64
}

// DetectByContent ranks profiles by how strongly their content signatures
// match the region and returns the top k candidates (k <= 0 means all).
// Ties break by profile id so the ranking is deterministic.
func (r *Registry) DetectByContent(content string, k int) []Candidate {
	// A shebang is authoritative when it resolves.
	if firstLine, _, _ := strings.Cut(content, "\n"); strings.HasPrefix(firstLine, "#!") {
		if p := r.ByShebang(firstLine); p != nil {
			return []Candidate{{Profile: p, Score: 1.0}}
		}
	}

	var candidates []Candidate
	for _, p := range r.ordered {
		score := 0.0
		for _, s := range p.Signatures {
			if s.Pattern.MatchString(content) {
				score += s.Weight
			}
		}
		if score > 1 {
			score = 1
		}
		if score > 0 {
			candidates = append(candidates, Candidate{Profile: p, Score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Profile.ID < candidates[j].Profile.ID
	})

	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}
