// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - External errors must be wrapped via this package's error helpers.
package config

// SeedChannel describes one candidate channel for the recommendation
// catalog before any scoring has happened.
type SeedChannel struct {
	Name     string   `koanf:"name"`
	Source   string   `koanf:"source"`
	Keywords []string `koanf:"keywords"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// PollIntervalSeconds sets the inter-poll delay per source.
	PollIntervalSeconds int `koanf:"poll_interval_seconds"`

	// FetchTimeoutSeconds bounds one connect-and-fetch cycle.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// CatalogSize is K, the number of entries the catalog retains.
	CatalogSize int `koanf:"catalog_size"`

	// IncludeZeroScores keeps zero-score entries in the ranking.
	IncludeZeroScores bool `koanf:"include_zero_scores"`

	// ExcludeSelfMatches drops catalog entries belonging to the
	// message's own source during scoring.
	ExcludeSelfMatches bool `koanf:"exclude_self_matches"`

	// MaxMessageLimit caps GET /messages?limit.
	MaxMessageLimit int `koanf:"max_message_limit"`

	// StopWords overrides the extractor's stop-word set when non-empty.
	StopWords []string `koanf:"stop_words"`

	// TokenizerEndpoint points at the external part-of-speech tagging
	// service; empty selects the in-process heuristic tagger.
	TokenizerEndpoint string `koanf:"tokenizer_endpoint"`

	// Slack credentials.
	SlackToken   string `koanf:"slack_token"`
	SlackChannel string `koanf:"slack_channel"`

	// Telegram credentials. A zero chat id accepts every chat.
	TelegramToken  string `koanf:"telegram_token"`
	TelegramChatID int64  `koanf:"telegram_chat_id"`

	// SeedChannels is the candidate pool of known channels.
	SeedChannels []SeedChannel `koanf:"seed_channels"`
}

// New creates a Config with defaults. The seed channels mirror the
// initial recommendation pool the service ships with.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		PollIntervalSeconds: 10,
		FetchTimeoutSeconds: 15,
		CatalogSize:         5,
		IncludeZeroScores:   true,
		ExcludeSelfMatches:  false,
		MaxMessageLimit:     200,
		SeedChannels: []SeedChannel{
			{Name: "AI Research Group", Source: "slack", Keywords: []string{"AI", "machine learning", "research"}},
			{Name: "Python Developers", Source: "slack", Keywords: []string{"Python", "programming", "developers"}},
			{Name: "Deep Learning Bot", Source: "telegram", Keywords: []string{"deep learning", "neural networks", "AI"}},
			{Name: "Tech News Channel", Source: "telegram", Keywords: []string{"technology", "news", "innovation"}},
		},
	}
}
