package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tokenwise/internal/domain"
	"tokenwise/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TransactionEvent // keyed by id
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*domain.TransactionEvent),
	}
}

// UpsertEvent persists one event keyed by id. Replaying an id overwrites the
// stored record.
func (s *EventStore) UpsertEvent(_ context.Context, e *domain.TransactionEvent) error {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *e
	s.data[e.ID] = &clone

	return nil
}

// RecentEvents retrieves up to limit events, newest first.
func (s *EventStore) RecentEvents(_ context.Context, limit int) ([]*domain.TransactionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := s.collect(func(*domain.TransactionEvent) bool { return true })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// EventsSince retrieves events with timestamp >= cutoff, newest first.
func (s *EventStore) EventsSince(_ context.Context, cutoff time.Time) ([]*domain.TransactionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(e *domain.TransactionEvent) bool {
		return !e.Timestamp.Before(cutoff)
	}), nil
}

// EventsForWallet retrieves one wallet's events with timestamp >= cutoff,
// newest first.
func (s *EventStore) EventsForWallet(_ context.Context, address string, cutoff time.Time) ([]*domain.TransactionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(e *domain.TransactionEvent) bool {
		return e.WalletAddress == address && !e.Timestamp.Before(cutoff)
	}), nil
}

// collect copies matching events sorted by timestamp descending, id as a
// deterministic tie-break. Caller must hold at least the read lock.
func (s *EventStore) collect(match func(*domain.TransactionEvent) bool) []*domain.TransactionEvent {
	var result []*domain.TransactionEvent
	for _, e := range s.data {
		if match(e) {
			clone := *e
			result = append(result, &clone)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Verify interface compliance at compile time.
var _ storage.EventStore = (*EventStore)(nil)
