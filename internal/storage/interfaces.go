package storage

import (
	"context"
	"time"

	"tokenwise/internal/domain"
)

// WalletStore provides access to wallet snapshot storage.
// Snapshots are keyed by address; replaying a record overwrites it
// (last-write-wins), never duplicates it.
type WalletStore interface {
	// UpsertSnapshot persists a full ranking generation. Each entry is
	// upserted by address.
	UpsertSnapshot(ctx context.Context, wallets []*domain.WalletSnapshot) error

	// TopWallets retrieves up to limit wallets ordered by rank ascending.
	TopWallets(ctx context.Context, limit int) ([]*domain.WalletSnapshot, error)
}

// EventStore provides access to transaction event storage.
// Events are keyed by id; upsert is idempotent, replaying the same id is a
// no-op beyond overwrite.
type EventStore interface {
	// UpsertEvent persists one transaction event keyed by id.
	UpsertEvent(ctx context.Context, e *domain.TransactionEvent) error

	// RecentEvents retrieves up to limit events ordered by timestamp
	// descending.
	RecentEvents(ctx context.Context, limit int) ([]*domain.TransactionEvent, error)

	// EventsSince retrieves events with timestamp >= cutoff (inclusive),
	// ordered by timestamp descending.
	EventsSince(ctx context.Context, cutoff time.Time) ([]*domain.TransactionEvent, error)

	// EventsForWallet retrieves events for one wallet with timestamp >=
	// cutoff, ordered by timestamp descending.
	EventsForWallet(ctx context.Context, address string, cutoff time.Time) ([]*domain.TransactionEvent, error)
}
