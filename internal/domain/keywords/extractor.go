// Package keywords turns message batches into frequency-ranked term
// mappings, given a source of part-of-speech-tagged tokens.
package keywords

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/okian/agora/internal/domain/model"
	"github.com/okian/agora/pkg/metrics"
)

// Token is one surface form with its part-of-speech tag as produced by
// the external morphological analyzer.
type Token struct {
	Form string
	Tag  string
}

// Tagger produces part-of-speech-tagged tokens for a text. It must at
// minimum distinguish noun tags from all others; noun tags start with
// the prefix the extractor is configured with.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Token, error)
}

// Frequency maps a term to its occurrence count (always >= 1).
type Frequency map[string]int

// TermCount is one term with its count, used for display ordering.
type TermCount struct {
	Term  string
	Count int
}

// Default extraction parameters. The stop words mirror the filler
// terms the original feed was trained to skip.
var defaultStopWords = []string{
	"thanks", "hello", "please", "anyone", "question",
	"related", "material", "book", "method", "content",
	"how", "why", "more", "today", "about",
}

const defaultMinRunes = 2

var defaultExclude = regexp.MustCompile(`<@`)

// Extractor filters tagged tokens down to significant nouns and
// accumulates their counts. It carries no state between calls: the
// same messages and the same tagger output always produce the same
// frequency mapping.
type Extractor struct {
	tagger     Tagger
	stopWords  map[string]struct{}
	minRunes   int
	exclude    *regexp.Regexp
	nounPrefix string
}

// NewExtractor creates an extractor backed by the given tagger.
func NewExtractor(tagger Tagger, opts ...Option) *Extractor {
	e := &Extractor{
		tagger:     tagger,
		stopWords:  make(map[string]struct{}),
		minRunes:   defaultMinRunes,
		exclude:    defaultExclude,
		nounPrefix: "N",
	}
	for _, w := range defaultStopWords {
		e.stopWords[w] = struct{}{}
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract accumulates noun counts across all input messages. Messages
// with empty text or matching the exclusion pattern are skipped; a
// tagger failure aborts the pass so the caller can log and retry on
// the next message.
func (e *Extractor) Extract(ctx context.Context, messages []model.Message) (Frequency, error) {
	start := time.Now()
	defer func() {
		metrics.RecordExtractionLatency(float64(time.Since(start).Milliseconds()))
	}()

	freq := make(Frequency)
	for _, msg := range messages {
		text := strings.TrimSpace(msg.Text)
		if text == "" || e.exclude.MatchString(text) {
			continue
		}

		tokens, err := e.tagger.Tag(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", msg.ID, err)
		}
		for _, t := range tokens {
			if !e.keep(t) {
				continue
			}
			freq[t.Form]++
		}
	}
	return freq, nil
}

// keep reports whether a token survives the noun/length/stop-word
// filters.
func (e *Extractor) keep(t Token) bool {
	if !strings.HasPrefix(t.Tag, e.nounPrefix) {
		return false
	}
	if utf8.RuneCountInString(t.Form) < e.minRunes {
		return false
	}
	_, stopped := e.stopWords[t.Form]
	return !stopped
}

// Ranked presents a frequency mapping sorted by count descending for
// display. Ties keep lexicographic term order so output is stable.
func Ranked(freq Frequency) []TermCount {
	out := make([]TermCount, 0, len(freq))
	for term, count := range freq {
		out = append(out, TermCount{Term: term, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// Terms returns the term set of a frequency mapping.
func (f Frequency) Terms() []string {
	out := make([]string, 0, len(f))
	for term := range f {
		out = append(out, term)
	}
	return out
}
