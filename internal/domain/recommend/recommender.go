package recommend

import (
	"context"

	"github.com/okian/agora/internal/domain/catalog"
	"github.com/okian/agora/internal/domain/keywords"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/logger"
	"github.com/okian/agora/pkg/metrics"
)

// Recommender is the ledger observer that closes the loop: on each
// accepted message it extracts keywords, re-scores the current catalog
// plus the configured candidate pool, and pushes the new ranking into
// the catalog cache. A failed extraction is logged and skipped; it
// never propagates back into ledger state.
type Recommender struct {
	extractor *keywords.Extractor
	scorer    *Scorer
	cache     *catalog.Cache
	pool      []model.CatalogEntry

	log logger.Logger
}

// NewRecommender wires the extractor and scorer to the shared catalog
// cache. pool is the candidate set of known channels that may enter
// the catalog; it is copied, never mutated.
func NewRecommender(extractor *keywords.Extractor, scorer *Scorer, cache *catalog.Cache, opts ...RecommenderOption) *Recommender {
	r := &Recommender{
		extractor: extractor,
		scorer:    scorer,
		cache:     cache,
		log:       logger.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Update implements ledger.Observer.
func (r *Recommender) Update(ctx context.Context, msg model.Message) {
	freq, err := r.extractor.Extract(ctx, []model.Message{msg})
	if err != nil {
		metrics.RecordRecommendError()
		r.log.Warn(ctx, "keyword extraction failed, skipping recommendation pass",
			logger.String("id", msg.ID),
			logger.Err(err),
		)
		return
	}
	if len(freq) == 0 {
		return
	}

	candidates := r.candidates(ctx)
	ranking := r.scorer.Score(freq.Terms(), candidates, msg.Source)
	r.cache.Update(ctx, ranking)
}

// candidates merges the current catalog with pool channels not yet in
// it, keyed by (name, source).
func (r *Recommender) candidates(ctx context.Context) []model.CatalogEntry {
	current := r.cache.Entries(ctx)

	held := make(map[string]struct{}, len(current))
	for _, e := range current {
		held[string(e.Source)+"/"+e.Name] = struct{}{}
	}

	out := current
	for _, e := range r.pool {
		if _, ok := held[string(e.Source)+"/"+e.Name]; ok {
			continue
		}
		out = append(out, e)
	}
	return out
}
