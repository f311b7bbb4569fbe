// Package model contains domain models passed between layers.
package model

import "time"

// Source identifies the external service a message came from.
type Source string

// Known message sources.
const (
	SourceSlack    Source = "slack"
	SourceTelegram Source = "telegram"
)

// Message is an immutable, normalized message produced by a source
// connector. ID is globally unique per (source, native id) pair and is
// the deduplication key.
type Message struct {
	ID        string  // unique id, e.g. "<channel>_<ts>"
	Source    Source  // originating service
	Text      string  // raw message text
	Timestamp float64 // unix seconds, used for ordering
	User      string  // optional author identifier
}

// Time converts the unix-seconds timestamp to a time.Time.
func (m Message) Time() time.Time {
	sec := int64(m.Timestamp)
	nsec := int64((m.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// DisplayTime renders the timestamp the way the read surface shows it.
func (m Message) DisplayTime() string {
	return m.Time().Format("2006-01-02 15:04:05")
}

// CatalogEntry is one ranked channel recommendation. Keywords carry
// set semantics; Score is the size of the keyword intersection from
// the last ranking pass.
type CatalogEntry struct {
	Name     string
	Source   Source
	Keywords []string
	Score    int
}

// HasKeyword reports whether term is in the entry's keyword set.
func (e CatalogEntry) HasKeyword(term string) bool {
	for _, k := range e.Keywords {
		if k == term {
			return true
		}
	}
	return false
}
