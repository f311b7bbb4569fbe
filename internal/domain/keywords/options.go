package keywords

import "regexp"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithStopWords replaces the default stop-word set.
func WithStopWords(words []string) Option {
	return func(e *Extractor) {
		if len(words) == 0 {
			return
		}
		e.stopWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			e.stopWords[w] = struct{}{}
		}
	}
}

// WithMinRunes sets the minimum surface length, in runes, a token must
// exceed to be counted.
func WithMinRunes(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minRunes = n
		}
	}
}

// WithExcludePattern sets the pattern that skips whole messages, e.g.
// internal user-mention markers.
func WithExcludePattern(re *regexp.Regexp) Option {
	return func(e *Extractor) {
		if re != nil {
			e.exclude = re
		}
	}
}

// WithNounPrefix sets the tag prefix that identifies nouns in the
// tagger's tag set.
func WithNounPrefix(prefix string) Option {
	return func(e *Extractor) {
		if prefix != "" {
			e.nounPrefix = prefix
		}
	}
}
