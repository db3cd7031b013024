package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"tokenwise/internal/domain"
	"tokenwise/internal/observability"
	"tokenwise/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// UpsertEvent persists one event keyed by id. Replaying an id overwrites the
// stored record.
func (s *EventStore) UpsertEvent(ctx context.Context, e *domain.TransactionEvent) error {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}
	if err := e.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, wallet_address, type, amount, price, protocol, timestamp, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			wallet_address = EXCLUDED.wallet_address,
			type = EXCLUDED.type,
			amount = EXCLUDED.amount,
			price = EXCLUDED.price,
			protocol = EXCLUDED.protocol,
			timestamp = EXCLUDED.timestamp,
			signature = EXCLUDED.signature
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		e.ID,
		e.WalletAddress,
		string(e.Type),
		e.Amount,
		e.Price,
		e.Protocol,
		e.Timestamp,
		e.Signature,
	)
	observability.RecordDBQuery("postgres", "upsert_event", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, err)
	}

	return nil
}

// RecentEvents retrieves up to limit events, newest first.
func (s *EventStore) RecentEvents(ctx context.Context, limit int) ([]*domain.TransactionEvent, error) {
	query := `
		SELECT id, wallet_address, type, amount, price, protocol, timestamp, signature
		FROM transactions
		ORDER BY timestamp DESC, id ASC
		LIMIT $1
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, limit)
	observability.RecordDBQuery("postgres", "recent_events", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsSince retrieves events with timestamp >= cutoff, newest first.
func (s *EventStore) EventsSince(ctx context.Context, cutoff time.Time) ([]*domain.TransactionEvent, error) {
	query := `
		SELECT id, wallet_address, type, amount, price, protocol, timestamp, signature
		FROM transactions
		WHERE timestamp >= $1
		ORDER BY timestamp DESC, id ASC
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, cutoff)
	observability.RecordDBQuery("postgres", "events_since", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query events since: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsForWallet retrieves one wallet's events with timestamp >= cutoff,
// newest first.
func (s *EventStore) EventsForWallet(ctx context.Context, address string, cutoff time.Time) ([]*domain.TransactionEvent, error) {
	query := `
		SELECT id, wallet_address, type, amount, price, protocol, timestamp, signature
		FROM transactions
		WHERE wallet_address = $1 AND timestamp >= $2
		ORDER BY timestamp DESC, id ASC
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, address, cutoff)
	observability.RecordDBQuery("postgres", "events_for_wallet", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query wallet events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents scans multiple rows into a slice of TransactionEvent.
func scanEvents(rows pgx.Rows) ([]*domain.TransactionEvent, error) {
	var events []*domain.TransactionEvent

	for rows.Next() {
		var e domain.TransactionEvent
		var typ string

		err := rows.Scan(
			&e.ID,
			&e.WalletAddress,
			&typ,
			&e.Amount,
			&e.Price,
			&e.Protocol,
			&e.Timestamp,
			&e.Signature,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		e.Type = domain.EventType(typ)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
