package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"tokenwise/internal/domain"
	"tokenwise/internal/observability"
	"tokenwise/internal/storage"
)

// EventStore implements storage.EventStore on ClickHouse as an analytics
// archive of transaction events. Upsert semantics come from
// ReplacingMergeTree keyed by id; reads use FINAL so replayed ids collapse
// to the latest version.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new ClickHouse-backed EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// UpsertEvent persists one event keyed by id.
func (s *EventStore) UpsertEvent(ctx context.Context, e *domain.TransactionEvent) error {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}
	if err := e.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, wallet_address, type, amount, price, protocol, timestamp, signature)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	start := time.Now()
	err := s.conn.Exec(ctx, query,
		e.ID,
		e.WalletAddress,
		string(e.Type),
		e.Amount,
		e.Price,
		e.Protocol,
		e.Timestamp.UTC(),
		e.Signature,
	)
	observability.RecordDBQuery("clickhouse", "upsert_event", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}

	return nil
}

// RecentEvents retrieves up to limit events, newest first.
func (s *EventStore) RecentEvents(ctx context.Context, limit int) ([]*domain.TransactionEvent, error) {
	query := `
		SELECT id, wallet_address, CAST(type, 'String'), amount, price, protocol, timestamp, signature
		FROM transactions FINAL
		ORDER BY timestamp DESC, id ASC
		LIMIT ?
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, limit)
	observability.RecordDBQuery("clickhouse", "recent_events", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsSince retrieves events with timestamp >= cutoff, newest first.
func (s *EventStore) EventsSince(ctx context.Context, cutoff time.Time) ([]*domain.TransactionEvent, error) {
	query := `
		SELECT id, wallet_address, CAST(type, 'String'), amount, price, protocol, timestamp, signature
		FROM transactions FINAL
		WHERE timestamp >= ?
		ORDER BY timestamp DESC, id ASC
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, cutoff.UTC())
	observability.RecordDBQuery("clickhouse", "events_since", time.Since(start).Seconds(), err)
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
		SELECT id, wallet_address, CAST(type, 'String'), amount, price, protocol, timestamp, signature
		FROM transactions FINAL
		WHERE wallet_address = ? AND timestamp >= ?
		ORDER BY timestamp DESC, id ASC
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, address, cutoff.UTC())
	observability.RecordDBQuery("clickhouse", "events_for_wallet", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query wallet events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// scanEvents scans multiple rows into a slice of TransactionEvent.
func scanEvents(rows driver.Rows) ([]*domain.TransactionEvent, error) {
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
