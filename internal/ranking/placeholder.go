package ranking

import (
	"crypto/rand"
	mrand "math/rand"
	"time"

	"github.com/mr-tron/base58"

	"tokenwise/internal/domain"
)

// placeholderRanking builds a synthetic holder set for display when every
// ledger endpoint is unavailable. The set goes through the same sort and
// rank path as real data, and is flagged so consumers can tell it apart.
func (e *Engine) placeholderRanking() *domain.Ranking {
	wallets := make([]*domain.WalletSnapshot, 0, e.limit)
	for i := 0; i < e.limit; i++ {
		wallets = append(wallets, &domain.WalletSnapshot{
			Address:     randomAddress(),
			Balance:     mrand.Float64() * 10,
			TokenAmount: 1_000 + mrand.Float64()*999_000,
		})
	}
	e.sortAndRank(wallets)

	return &domain.Ranking{
		Wallets:     wallets,
		Generation:  e.generation.Add(1),
		Placeholder: true,
		RankedAt:    time.Now().UTC(),
	}
}

// randomAddress returns a base58-encoded random 32-byte value, shaped like a
// real account address.
func randomAddress() string {
	raw := make([]byte, 32)
	rand.Read(raw)
	return base58.Encode(raw)
}
