package storage

import (
	"context"
	"log"
	"time"

	"tokenwise/internal/domain"
)

// TeeEventStore mirrors writes into a secondary archive store while serving
// reads from the primary. An archive failure is logged, never surfaced; the
// primary is the source of truth.
type TeeEventStore struct {
	primary EventStore
	archive EventStore
	logger  *log.Logger
}

// NewTeeEventStore creates a tee over a primary and an archive store.
func NewTeeEventStore(primary, archive EventStore, logger *log.Logger) *TeeEventStore {
	if logger == nil {
		logger = log.Default()
	}
	return &TeeEventStore{primary: primary, archive: archive, logger: logger}
}

// Compile-time interface check.
var _ EventStore = (*TeeEventStore)(nil)

// UpsertEvent writes to the primary, then mirrors into the archive.
func (s *TeeEventStore) UpsertEvent(ctx context.Context, e *domain.TransactionEvent) error {
	if err := s.primary.UpsertEvent(ctx, e); err != nil {
		return err
	}
	if err := s.archive.UpsertEvent(ctx, e); err != nil {
		s.logger.Printf("archive write failed for event %s: %v", e.ID, err)
	}
	return nil
}

// RecentEvents reads from the primary.
func (s *TeeEventStore) RecentEvents(ctx context.Context, limit int) ([]*domain.TransactionEvent, error) {
	return s.primary.RecentEvents(ctx, limit)
}

// EventsSince reads from the primary.
func (s *TeeEventStore) EventsSince(ctx context.Context, cutoff time.Time) ([]*domain.TransactionEvent, error) {
	return s.primary.EventsSince(ctx, cutoff)
}

// EventsForWallet reads from the primary.
func (s *TeeEventStore) EventsForWallet(ctx context.Context, address string, cutoff time.Time) ([]*domain.TransactionEvent, error) {
	return s.primary.EventsForWallet(ctx, address, cutoff)
}
