// Package types contains common read shapes used across the application
package types

// MessageView is the read shape for messages returned by the API and
// pushed over the websocket.
type MessageView struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Text   string  `json:"text"`
	TS     float64 `json:"ts"`
	Time   string  `json:"time"`
	User   string  `json:"user,omitempty"`
}

// CatalogEntryView is the read shape for one ranked recommendation.
type CatalogEntryView struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Keywords []string `json:"keywords,omitempty"`
	Score    int      `json:"score"`
}
