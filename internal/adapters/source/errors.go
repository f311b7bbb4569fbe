package source

import (
	"errors"
)

// Sentinel kinds for connector errors. These allow errors.Is from the
// ingestion driver, which treats both as "zero messages this cycle".
var (
	ErrConnection = errors.New("source connection failed")
	ErrFetch      = errors.New("source fetch failed")
)
