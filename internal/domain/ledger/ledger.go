// Package ledger holds the deduplicating, time-ordered store of
// ingested messages and fans accepted messages out to observers.
package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/agora/internal/domain/dedupe"
	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/logger"
	"github.com/okian/agora/pkg/metrics"
)

// Observer receives every message accepted into the ledger. Delivery
// is synchronous and best-effort; an observer must not call back into
// the ledger from Update.
type Observer interface {
	Update(ctx context.Context, msg model.Message)
}

type subscription struct {
	id       string
	observer Observer
}

// Ledger is the in-memory message store. Insertion is the only
// mutation; accepted messages are immutable and never removed. The
// sequence is kept sorted by timestamp descending at all times.
type Ledger struct {
	mu       sync.RWMutex
	messages []model.Message
	seen     dedupe.Recorder
	subs     []subscription

	log logger.Logger
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		log: logger.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.seen == nil {
		l.seen = dedupe.NewInMemoryRecorder()
	}
	return l
}

// AddMessage inserts msg unless its id was already accepted. A
// duplicate is rejected silently: no mutation, no notification, and
// the return value is false. On acceptance the message is inserted in
// timestamp-descending order and every registered observer is notified
// in registration order before the next mutation can begin.
func (l *Ledger) AddMessage(ctx context.Context, msg model.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seen.SeenAndRecord(msg.ID) {
		metrics.RecordMessageDuplicate()
		l.log.Debug(ctx, "duplicate message rejected",
			logger.String("id", msg.ID),
			logger.String("source", string(msg.Source)),
		)
		return false
	}

	l.insert(msg)
	metrics.RecordMessageIngested()
	metrics.UpdateLedgerSize(len(l.messages))

	for _, s := range l.subs {
		l.deliver(ctx, s, msg)
	}
	return true
}

// insert places msg into the timestamp-descending sequence. For equal
// timestamps the earlier-accepted message stays first (stable order).
func (l *Ledger) insert(msg model.Message) {
	i := sort.Search(len(l.messages), func(i int) bool {
		return l.messages[i].Timestamp < msg.Timestamp
	})
	l.messages = append(l.messages, model.Message{})
	copy(l.messages[i+1:], l.messages[i:])
	l.messages[i] = msg
}

// deliver invokes one observer, isolating panics so a faulty observer
// cannot block delivery to the rest.
func (l *Ledger) deliver(ctx context.Context, s subscription, msg model.Message) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordObserverPanic("ledger")
			l.log.Error(ctx, "ledger observer panicked",
				logger.String("subscription", s.id),
				logger.Any("panic", r),
			)
		}
	}()
	s.observer.Update(ctx, msg)
}

// Subscribe registers an observer and returns its subscription id.
// Re-subscribing the same observer is a no-op returning the existing
// id, so no observer is ever double-delivered.
func (l *Ledger) Subscribe(obs Observer) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.subs {
		if s.observer == obs {
			return s.id
		}
	}
	id := uuid.NewString()
	l.subs = append(l.subs, subscription{id: id, observer: obs})
	return id
}

// Unsubscribe removes the observer registered under id. It reports
// whether a subscription was removed.
func (l *Ledger) Unsubscribe(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, s := range l.subs {
		if s.id == id {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			return true
		}
	}
	return false
}

// All returns a snapshot of the full sequence, newest first.
func (l *Ledger) All(ctx context.Context) []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Recent returns a snapshot of at most n of the most recent messages.
func (l *Ledger) Recent(ctx context.Context, n int) []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.messages) {
		n = len(l.messages)
	}
	out := make([]model.Message, n)
	copy(out, l.messages[:n])
	return out
}

// Size returns the number of accepted messages.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
