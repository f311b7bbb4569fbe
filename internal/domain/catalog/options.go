package catalog

import "github.com/okian/agora/pkg/logger"

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithSize sets K, the number of entries retained on every update.
func WithSize(k int) Option {
	return func(c *Cache) {
		if k > 0 {
			c.size = k
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(log logger.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}
