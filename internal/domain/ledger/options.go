package ledger

import (
	"github.com/okian/agora/internal/domain/dedupe"
	"github.com/okian/agora/pkg/logger"
)

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithRecorder sets the seen-id recorder used for deduplication.
func WithRecorder(r dedupe.Recorder) Option {
	return func(l *Ledger) {
		if r != nil {
			l.seen = r
		}
	}
}

// WithLogger sets a custom logger for the ledger.
func WithLogger(log logger.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}
