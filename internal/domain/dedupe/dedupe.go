// Package dedupe tracks message ids the ledger has already accepted.
package dedupe

import (
	"sync"
)

// Recorder records seen message IDs so a duplicate is detected exactly
// once. Implementations must be safe for concurrent use.
type Recorder interface {
	// SeenAndRecord atomically checks if id was seen and records it if
	// not. Returns true if id was already seen, false if it was newly
	// recorded. This is the ONLY method for deduplication.
	SeenAndRecord(id string) bool

	// Size returns the number of recorded ids.
	Size() int
}

// inMemoryRecorder implements Recorder with a plain map. Accepted ids
// live for the lifetime of the process, so there is no eviction: an id
// once recorded stays recorded until shutdown.
type inMemoryRecorder struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryRecorder creates a new in-memory recorder.
func NewInMemoryRecorder(opts ...Option) Recorder {
	r := &inMemoryRecorder{}

	for _, opt := range opts {
		opt(r)
	}

	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	return r
}

func (r *inMemoryRecorder) SeenAndRecord(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}

func (r *inMemoryRecorder) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
