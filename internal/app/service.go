// Package service provides the core business service that wires the
// ledger, catalog, recommender, and ingestion poller together and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/agora/internal/adapters/poller"
	"github.com/okian/agora/internal/adapters/source"
	"github.com/okian/agora/internal/adapters/tokenizer"
	"github.com/okian/agora/internal/domain/catalog"
	"github.com/okian/agora/internal/domain/keywords"
	"github.com/okian/agora/internal/domain/ledger"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/internal/domain/recommend"
	"github.com/okian/agora/pkg/logger"
)

// Default wiring parameters.
const (
	defaultPollInterval = 10 * time.Second
	defaultFetchTimeout = 15 * time.Second
)

// Service owns the aggregation pipeline: connectors feed the ledger,
// the recommender observes the ledger and feeds the catalog, and the
// read surface snapshots both.
type Service struct {
	mu sync.RWMutex

	// Core components
	ledger      *ledger.Ledger
	catalog     *catalog.Cache
	recommender *recommend.Recommender
	poller      *poller.Poller

	// Wiring inputs
	connectors         []source.Connector
	tagger             keywords.Tagger
	pool               []model.CatalogEntry
	stopWords          []string
	catalogSize        int
	pollInterval       time.Duration
	fetchTimeout       time.Duration
	includeZeroScores  bool
	excludeSelfMatches bool

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithConnectors sets the source connectors to poll.
func WithConnectors(connectors ...source.Connector) Option {
	return func(s *Service) {
		s.connectors = connectors
	}
}

// WithTagger sets the part-of-speech tagger behind the extractor.
func WithTagger(t keywords.Tagger) Option {
	return func(s *Service) {
		if t != nil {
			s.tagger = t
		}
	}
}

// WithCandidatePool sets the channels eligible to enter the catalog.
func WithCandidatePool(pool []model.CatalogEntry) Option {
	return func(s *Service) {
		s.pool = pool
	}
}

// WithStopWords overrides the extractor's stop-word set.
func WithStopWords(words []string) Option {
	return func(s *Service) {
		s.stopWords = words
	}
}

// WithCatalogSize sets K, the number of entries the catalog retains.
func WithCatalogSize(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.catalogSize = k
		}
	}
}

// WithPollInterval sets the inter-poll delay per source.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithFetchTimeout bounds one connect-and-fetch cycle.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithZeroScores controls whether zero-score entries stay in rankings.
func WithZeroScores(include bool) Option {
	return func(s *Service) {
		s.includeZeroScores = include
	}
}

// WithSelfMatchExclusion drops entries of the message's own source
// from rankings.
func WithSelfMatchExclusion(exclude bool) Option {
	return func(s *Service) {
		s.excludeSelfMatches = exclude
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalogSize:       catalog.DefaultSize,
		pollInterval:      defaultPollInterval,
		fetchTimeout:      defaultFetchTimeout,
		includeZeroScores: true,
		logger:            nil, // replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting aggregation service...")

	s.ledger = ledger.New(
		ledger.WithLogger(s.logger.Named("ledger")),
	)
	s.catalog = catalog.New(
		catalog.WithSize(s.catalogSize),
		catalog.WithLogger(s.logger.Named("catalog")),
	)

	if s.tagger == nil {
		s.tagger = tokenizer.NewHeuristic()
		s.logger.Info(ctx, "no tokenizer endpoint configured, using heuristic tagger")
	}
	extractor := keywords.NewExtractor(s.tagger,
		keywords.WithStopWords(s.stopWords),
	)
	scorer := recommend.NewScorer(
		recommend.WithZeroScores(s.includeZeroScores),
		recommend.WithSelfMatchExclusion(s.excludeSelfMatches),
	)
	s.recommender = recommend.NewRecommender(extractor, scorer, s.catalog,
		recommend.WithCandidatePool(s.pool),
		recommend.WithLogger(s.logger.Named("recommend")),
	)
	s.ledger.Subscribe(s.recommender)

	s.poller = poller.New(s.ledger, s.connectors,
		poller.WithInterval(s.pollInterval),
		poller.WithFetchTimeout(s.fetchTimeout),
		poller.WithLogger(s.logger.Named("poller")),
	)
	if err := s.poller.Start(ctx); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "aggregation service started",
		logger.Int("sources", len(s.connectors)),
		logger.Int("catalogSize", s.catalogSize),
		logger.String("pollInterval", s.pollInterval.String()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping aggregation service...")

	if s.poller != nil {
		s.poller.Stop()
	}

	s.started = false
	s.logger.Info(context.Background(), "aggregation service stopped")
}

// SubscribeLedger registers an observer for accepted messages.
func (s *Service) SubscribeLedger(obs ledger.Observer) string {
	return s.ledger.Subscribe(obs)
}

// SubscribeCatalog registers an observer for catalog replacements.
func (s *Service) SubscribeCatalog(obs catalog.Observer) string {
	return s.catalog.Subscribe(obs)
}

// AddMessage feeds one message into the ledger, e.g. from tests or a
// push-style source. It reports whether the message was accepted.
func (s *Service) AddMessage(ctx context.Context, msg model.Message) bool {
	return s.ledger.AddMessage(ctx, msg)
}

// Recent returns at most n of the most recent messages.
func (s *Service) Recent(ctx context.Context, n int) []model.Message {
	return s.ledger.Recent(ctx, n)
}

// All returns the full message sequence, newest first.
func (s *Service) All(ctx context.Context) []model.Message {
	return s.ledger.All(ctx)
}

// Catalog returns the current top-K recommendation ranking.
func (s *Service) Catalog(ctx context.Context) []model.CatalogEntry {
	return s.catalog.Entries(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"sources":      len(s.connectors),
		"catalogSize":  s.catalogSize,
		"pollInterval": s.pollInterval.String(),
	}

	if s.started {
		stats["ledgerSize"] = s.ledger.Size()
		stats["catalogEntries"] = s.catalog.Size()
	}

	return stats
}
