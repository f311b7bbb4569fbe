// Package source defines the connector contract for external message
// services and its Slack and Telegram implementations.
//
// A connector normalizes a remote service's replies into immutable
// model.Message values before they ever reach the ledger. New source
// types are added by implementing Connector, not by wiring into any
// shared base.
package source

import (
	"context"

	"github.com/okian/agora/internal/domain/model"
)

// Connector speaks to one remote chat/news service.
type Connector interface {
	// Name identifies the connector in logs and metrics.
	Name() string

	// Source is the enum value stamped on every produced message.
	Source() model.Source

	// Connect verifies reachability and credentials. A non-2xx or
	// invalid-auth response yields an error wrapping ErrConnection.
	Connect(ctx context.Context) error

	// FetchMessages pulls the current batch of normalized messages.
	// Transport or API failures yield an error wrapping ErrFetch.
	FetchMessages(ctx context.Context) ([]model.Message, error)
}
