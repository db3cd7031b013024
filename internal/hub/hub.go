// Package hub fans live updates out to an arbitrary set of subscribers.
package hub

import (
	"log"
	"sync"

	"tokenwise/internal/domain"
	"tokenwise/internal/observability"
)

// Message kinds carried over the hub.
const (
	KindTransaction = "transaction"
	KindWallets     = "wallets"
)

// Message is one tagged broadcast frame. Exactly one payload field is set,
// matching Kind.
type Message struct {
	Kind        string                   `json:"kind"`
	Transaction *domain.TransactionEvent `json:"transaction,omitempty"`
	Wallets     []*domain.WalletSnapshot `json:"wallets,omitempty"`
	Generation  uint64                   `json:"generation,omitempty"`
	Placeholder bool                     `json:"placeholder,omitempty"`
}

// TransactionMessage wraps one event for broadcast.
func TransactionMessage(e *domain.TransactionEvent) Message {
	return Message{Kind: KindTransaction, Transaction: e}
}

// WalletsMessage wraps a ranking for broadcast.
func WalletsMessage(r *domain.Ranking) Message {
	return Message{
		Kind:        KindWallets,
		Wallets:     r.Wallets,
		Generation:  r.Generation,
		Placeholder: r.Placeholder,
	}
}

// DefaultBuffer is the per-subscriber channel depth.
const DefaultBuffer = 16

// Hub delivers messages to every current subscriber without ever blocking
// the publisher. A subscriber that cannot keep up loses messages rather
// than stalling the pipeline.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
	buffer      int
	logger      *log.Logger
}

// NewHub creates a hub with the given per-subscriber buffer depth.
// A depth <= 0 falls back to DefaultBuffer.
func NewHub(buffer int, logger *log.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		subscribers: make(map[chan Message]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (h *Hub) Subscribe() chan Message {
	ch := make(chan Message, h.buffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	n := len(h.subscribers)
	h.mu.Unlock()

	observability.UpdateHubSubscribers(n)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unsubscribing an
// unknown channel is a no-op.
func (h *Hub) Unsubscribe(ch chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[ch]; !ok {
		return
	}
	delete(h.subscribers, ch)
	close(ch)
	observability.UpdateHubSubscribers(len(h.subscribers))
}

// NumSubscribers returns the current subscriber count.
func (h *Hub) NumSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish delivers msg to every subscriber whose buffer has room and
// returns how many received it. Full subscribers are skipped.
func (h *Hub) Publish(msg Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers {
		select {
		case ch <- msg:
			delivered++
		default:
			h.logger.Printf("dropping %s message for slow subscriber", msg.Kind)
		}
	}

	observability.RecordBroadcast(msg.Kind, delivered, len(h.subscribers))
	return delivered
}
