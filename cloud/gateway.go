package cloud

import (
	"context"
	"errors"
	"time"

	"github.com/ottercare/pebble/pet/stats"
)

// Row is one pet's cloud backup record, keyed by player id.
type Row struct {
	ID         string
	Stats      stats.CoreStats
	LastLogin  time.Time
	Inventory  []string
	PetName    string
	PlayerName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ErrNotFound means no row exists for the requested player id.
var ErrNotFound = errors.New("cloud: row not found")

// ErrSchemaMissing means the backing table does not exist. The pet
// store latches sync off for the session when it sees this.
var ErrSchemaMissing = errors.New("cloud: schema missing")

// Gateway is the remote row store used for cross-device backup.
// Implementations classify failures as ErrNotFound or ErrSchemaMissing
// where they can; anything else is a transient error.
type Gateway interface {
	FetchByPlayerID(ctx context.Context, id string) (*Row, error)
	Upsert(ctx context.Context, row *Row) error
	DeleteByPlayerID(ctx context.Context, id string) error
}
