// Package poller drives the recurring ingestion cycles, one schedule
// per source connector.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/agora/internal/adapters/source"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/logger"
	"github.com/okian/agora/pkg/metrics"
)

// Default scheduling parameters.
const (
	defaultInterval     = 10 * time.Second
	defaultFetchTimeout = 15 * time.Second
	stopDrainTimeout    = 30 * time.Second
)

// Ledger is what the poller feeds accepted messages into.
type Ledger interface {
	AddMessage(ctx context.Context, msg model.Message) bool
}

// Poller schedules one recurring fetch job per connector. Jobs run on
// independent schedules; one source failing or stalling never blocks
// another's cycle. Cycles for the same connector never overlap:
// connectors may keep per-cycle state (e.g. the telegram update
// offset), so a cycle that outlives its interval delays the next one
// instead of racing it.
type Poller struct {
	ledger       Ledger
	connectors   []source.Connector
	interval     time.Duration
	fetchTimeout time.Duration

	mu    sync.Mutex
	locks map[source.Connector]*sync.Mutex

	cron *cron.Cron
	log  logger.Logger
}

// New creates a poller feeding ledger from the given connectors.
func New(ledger Ledger, connectors []source.Connector, opts ...Option) *Poller {
	p := &Poller{
		ledger:       ledger,
		connectors:   connectors,
		interval:     defaultInterval,
		fetchTimeout: defaultFetchTimeout,
		locks:        make(map[source.Connector]*sync.Mutex),
		log:          logger.Nop(),
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start registers and starts the per-source schedules. ctx bounds the
// lifetime of every cycle started afterwards.
func (p *Poller) Start(ctx context.Context) error {
	if p.cron != nil {
		return nil
	}
	p.cron = cron.New()

	spec := fmt.Sprintf("@every %s", p.interval)
	for _, c := range p.connectors {
		conn := c
		if _, err := p.cron.AddFunc(spec, func() {
			p.RunCycle(ctx, conn)
		}); err != nil {
			return fmt.Errorf("schedule %s: %w", conn.Name(), err)
		}
	}

	p.cron.Start()
	p.log.Info(ctx, "poller started",
		logger.Int("sources", len(p.connectors)),
		logger.String("interval", p.interval.String()),
	)
	return nil
}

// Stop halts scheduling and waits for in-flight cycles to drain.
func (p *Poller) Stop() {
	if p.cron == nil {
		return
	}
	drained := p.cron.Stop()
	select {
	case <-drained.Done():
	case <-time.After(stopDrainTimeout):
	}
	p.cron = nil
}

// RunCycle performs one connect-and-fetch pass for a single source,
// serialized per connector. Any failure is logged and counted and the
// cycle yields zero messages; ledger state is never touched on error.
func (p *Poller) RunCycle(ctx context.Context, conn source.Connector) {
	lock := p.connectorLock(conn)
	lock.Lock()
	defer lock.Unlock()

	cycleCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	start := time.Now()
	if err := conn.Connect(cycleCtx); err != nil {
		metrics.RecordFetchError(conn.Name())
		p.log.Warn(ctx, "source connect failed, skipping cycle",
			logger.String("source", conn.Name()),
			logger.Err(err),
		)
		return
	}

	batch, err := conn.FetchMessages(cycleCtx)
	metrics.RecordFetchLatency(conn.Name(), float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordFetchError(conn.Name())
		p.log.Warn(ctx, "source fetch failed, skipping cycle",
			logger.String("source", conn.Name()),
			logger.Err(err),
		)
		return
	}
	metrics.RecordMessagesFetched(conn.Name(), len(batch))

	accepted := 0
	for _, msg := range batch {
		if p.ledger.AddMessage(ctx, msg) {
			accepted++
		}
	}
	p.log.Debug(ctx, "ingestion cycle complete",
		logger.String("source", conn.Name()),
		logger.Int("fetched", len(batch)),
		logger.Int("accepted", accepted),
	)
}

// connectorLock returns the mutex serializing cycles for one
// connector, creating it on first use.
func (p *Poller) connectorLock(conn source.Connector) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.locks[conn]
	if !ok {
		l = &sync.Mutex{}
		p.locks[conn] = l
	}
	return l
}
