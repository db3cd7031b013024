package domain

import "time"

// Ranking is the result of one holder-ranking cycle.
//
// Placeholder marks synthetic data substituted when every RPC endpoint
// failed; callers must be able to tell it apart from a real (possibly empty)
// ranking and must never treat it as authoritative.
type Ranking struct {
	Wallets     []*WalletSnapshot `json:"wallets"`
	Generation  uint64            `json:"generation"`
	Placeholder bool              `json:"placeholder"`
	RankedAt    time.Time         `json:"rankedAt"`
}

// Addresses returns the wallet addresses in rank order.
func (r *Ranking) Addresses() []string {
	addrs := make([]string, 0, len(r.Wallets))
	for _, w := range r.Wallets {
		addrs = append(addrs, w.Address)
	}
	return addrs
}
