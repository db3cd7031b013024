package domain

import (
	"errors"
	"time"
)

// Validation errors shared by domain records.
var (
	ErrEmptyAddress   = errors.New("empty wallet address")
	ErrNegativeAmount = errors.New("negative amount")
	ErrInvalidRank    = errors.New("rank must be positive")
	ErrInvalidType    = errors.New("transaction type must be buy or sell")
)

// EventType classifies a transaction as a buy or a sell.
type EventType string

const (
	EventTypeBuy  EventType = "buy"
	EventTypeSell EventType = "sell"
)

// String returns the string representation of EventType.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks if the type is a valid value.
func (t EventType) IsValid() bool {
	return t == EventTypeBuy || t == EventTypeSell
}

// TransactionEvent is a single classified buy/sell observed (or generated)
// for a monitored wallet. Events are immutable once persisted; ID is the
// deduplication key.
type TransactionEvent struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	Type          EventType `json:"type"`
	Amount        float64   `json:"amount"`
	Price         float64   `json:"price"`
	Protocol      string    `json:"protocol"`
	Timestamp     time.Time `json:"timestamp"`
	Signature     string    `json:"signature"`
}

// Validate checks the event invariants required before persisting.
func (e *TransactionEvent) Validate() error {
	if e.WalletAddress == "" {
		return ErrEmptyAddress
	}
	if !e.Type.IsValid() {
		return ErrInvalidType
	}
	if e.Amount < 0 || e.Price < 0 {
		return ErrNegativeAmount
	}
	return nil
}
