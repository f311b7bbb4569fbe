package dedupe

// Option applies a configuration option to the in-memory recorder.
type Option func(*inMemoryRecorder)

// WithInitialCapacity pre-sizes the seen-id map.
func WithInitialCapacity(n int) Option {
	return func(r *inMemoryRecorder) {
		if n > 0 {
			r.seen = make(map[string]struct{}, n)
		}
	}
}
