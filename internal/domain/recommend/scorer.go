// Package recommend computes interest-match rankings between a user's
// extracted keywords and catalog channel keyword sets.
package recommend

import (
	"sort"

	"github.com/okian/agora/internal/domain/model"
)

// Scorer ranks catalog entries by unweighted keyword-set intersection.
// It holds only policy flags; Score itself is pure.
type Scorer struct {
	includeZeroScores bool
	excludeSelfMatch  bool
}

// NewScorer creates a scorer. The reference behavior includes
// zero-score entries so the catalog can still surface previously
// ranked channels.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		includeZeroScores: true,
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes, for every entry, the size of the intersection
// between userKeywords and the entry's keyword set, and returns a new
// sequence sorted by score descending, stable with respect to input
// order for equal scores. Inputs are never mutated. When self-match
// exclusion is enabled, entries whose source equals selfSource are
// dropped from the ranking.
func (s *Scorer) Score(userKeywords []string, entries []model.CatalogEntry, selfSource model.Source) []model.CatalogEntry {
	kw := make(map[string]struct{}, len(userKeywords))
	for _, k := range userKeywords {
		kw[k] = struct{}{}
	}

	ranked := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if s.excludeSelfMatch && e.Source == selfSource {
			continue
		}
		score := intersectionSize(kw, e.Keywords)
		if score == 0 && !s.includeZeroScores {
			continue
		}
		scored := e
		scored.Score = score
		ranked = append(ranked, scored)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func intersectionSize(kw map[string]struct{}, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if _, ok := kw[k]; ok {
			n++
		}
	}
	return n
}
