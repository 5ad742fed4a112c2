// Package live defines the boundary to the hosted data service: domain
// queries keyed by user, domain, and an optional date range, plus the
// mutation path. The provider consumes Source; the sync agent consumes
// Mutator. No particular transport is assumed by callers.
package live

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
)

// Query identifies one domain read.
type Query struct {
	UserID string
	Domain ledger.Domain

	// From and To optionally bound date-carrying domains (expenses,
	// income). Zero values mean unbounded.
	From time.Time
	To   time.Time
}

// Source answers domain queries against the hosted backend. A failed or
// timed-out fetch returns an error; an empty result is a valid success.
type Source interface {
	Fetch(ctx context.Context, q Query) (ledger.Records, error)
}

// Mutation is one pending write against the hosted backend. Replays are
// at-least-once, so the backend deduplicates on the mutation ID. Domain
// is carried as its wire name so queued mutations survive restarts
// unambiguously.
type Mutation struct {
	ID       string          `json:"id"`
	UserID   string          `json:"userId"`
	Domain   string          `json:"domain"`
	Op       string          `json:"op"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queuedAt"`
}

// Mutation operations.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// NewMutation builds a mutation with a fresh ULID, which doubles as the
// backend's idempotency key.
func NewMutation(userID string, domain ledger.Domain, op string, payload json.RawMessage) Mutation {
	return Mutation{
		ID:       ledger.NewID(),
		UserID:   userID,
		Domain:   domain.String(),
		Op:       op,
		Payload:  payload,
		QueuedAt: time.Now().UTC(),
	}
}

// Mutator applies mutations against the hosted backend.
type Mutator interface {
	Apply(ctx context.Context, m Mutation) error
}
