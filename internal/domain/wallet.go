package domain

import "time"

// WalletSnapshot is one ranked holder of the tracked token.
// Snapshots are produced wholesale by the ranking engine; a single entry is
// never mutated outside a full re-rank.
type WalletSnapshot struct {
	Address      string     `json:"address"`
	Balance      float64    `json:"balance"`     // native SOL balance
	TokenAmount  float64    `json:"tokenAmount"` // tracked token holdings
	Rank         int        `json:"rank"`        // 1-based, contiguous within a generation
	LastActivity *time.Time `json:"lastActivity,omitempty"`
}

// Validate checks the snapshot invariants that hold for every entry.
func (w *WalletSnapshot) Validate() error {
	if w.Address == "" {
		return ErrEmptyAddress
	}
	if w.Balance < 0 || w.TokenAmount < 0 {
		return ErrNegativeAmount
	}
	if w.Rank < 1 {
		return ErrInvalidRank
	}
	return nil
}
