package recommend

import (
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/logger"
)

// ScorerOption applies a configuration option to the Scorer.
type ScorerOption func(*Scorer)

// WithZeroScores controls whether zero-score entries stay in the
// ranking. The default keeps them.
func WithZeroScores(include bool) ScorerOption {
	return func(s *Scorer) {
		s.includeZeroScores = include
	}
}

// WithSelfMatchExclusion drops entries belonging to the message's own
// source from the ranking. Off by default; whether a message should
// boost channels of the service it came from is product policy, not a
// fixed rule.
func WithSelfMatchExclusion(exclude bool) ScorerOption {
	return func(s *Scorer) {
		s.excludeSelfMatch = exclude
	}
}

// RecommenderOption applies a configuration option to the Recommender.
type RecommenderOption func(*Recommender)

// WithCandidatePool sets the channels eligible to enter the catalog.
func WithCandidatePool(pool []model.CatalogEntry) RecommenderOption {
	return func(r *Recommender) {
		r.pool = make([]model.CatalogEntry, len(pool))
		copy(r.pool, pool)
	}
}

// WithLogger sets a custom logger for the recommender.
func WithLogger(log logger.Logger) RecommenderOption {
	return func(r *Recommender) {
		if log != nil {
			r.log = log
		}
	}
}
