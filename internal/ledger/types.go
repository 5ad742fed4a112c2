// Package ledger defines the core financial record types shared by the
// data provider, the local snapshot store, and the export pipeline.
package ledger

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

//nolint:gochecknoglobals // Monotonic entropy keeps IDs ordered within a millisecond
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexicographically sortable record identifier.
// IDs generated within the same millisecond remain strictly ordered, so
// they double as a FIFO key for the sync queue.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Expense is a single spend entry.
type Expense struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	ForValue  string          `json:"forValue,omitempty"`
	CardID    string          `json:"cardId,omitempty"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Income is a single income entry.
type Income struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Source    string          `json:"source"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Category is a user-defined expense category.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ForValue is a reusable "what was this for" label.
type ForValue struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Card is a registered payment card. Only display metadata is stored;
// the full card number never enters the system.
type Card struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	LastFour  string    `json:"lastFour"`
	Network   string    `json:"network,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
