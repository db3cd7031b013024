package ranking

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"tokenwise/internal/domain"
	"tokenwise/internal/solana"
)

// Engine computes the ranked top-holder set for a single token mint.
//
// A ranking run fetches every token account for the mint, aggregates amounts
// per owner wallet, drops program-derived owners, sorts by holding size and
// assigns contiguous ranks starting at 1. When the ledger is unreachable the
// run degrades to a generated placeholder set flagged as such instead of
// returning an error, so callers always get something to display.
type Engine struct {
	client solana.Client
	mint   string
	limit  int
	logger *log.Logger

	generation atomic.Uint64
}

// Options configures an Engine.
type Options struct {
	// Client executes ledger reads. Required.
	Client solana.Client
	// Mint is the token mint whose holders are ranked. Required.
	Mint string
	// Limit caps how many wallets a ranking carries.
	Limit int
	// Logger receives run diagnostics.
	Logger *log.Logger
}

// DefaultLimit caps ranking size when Options.Limit is unset.
const DefaultLimit = 60

// NewEngine creates a ranking engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("ranking: client is required")
	}
	if opts.Mint == "" {
		return nil, fmt.Errorf("ranking: mint is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Engine{
		client: opts.Client,
		mint:   opts.Mint,
		limit:  opts.Limit,
		logger: opts.Logger,
	}, nil
}

// Generation returns the number of completed ranking runs.
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

// RankTopHolders runs one full ranking pass.
//
// It never returns an error for ledger failures: when no endpoint can serve
// the holder query the result is a placeholder ranking with Placeholder set.
// Each run, real or placeholder, increments the generation counter.
func (e *Engine) RankTopHolders(ctx context.Context) (*domain.Ranking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	accounts, err := e.client.GetTokenHolders(ctx, e.mint)
	if err != nil {
		e.logger.Printf("holder fetch failed, serving placeholder set: %v", err)
		return e.placeholderRanking(), nil
	}

	holders := aggregateByOwner(accounts)
	wallets := e.resolveBalances(ctx, holders)
	e.sortAndRank(wallets)

	return &domain.Ranking{
		Wallets:    wallets,
		Generation: e.generation.Add(1),
		RankedAt:   time.Now().UTC(),
	}, nil
}

// holder is one owner wallet with its aggregated token amount.
type holder struct {
	owner  string
	amount float64
}

// aggregateByOwner sums token amounts per owner wallet, preserving
// first-seen order. Empty accounts and program-derived owners (pool vaults,
// escrows) are dropped so the ranking only carries user wallets.
func aggregateByOwner(accounts []solana.TokenAccount) []holder {
	totals := make(map[string]float64)
	var order []string

	for _, a := range accounts {
		if a.Amount <= 0 || a.Owner == "" {
			continue
		}
		if _, seen := totals[a.Owner]; !seen {
			if !isOnCurve(a.Owner) {
				totals[a.Owner] = -1 // remember rejection, skip re-decode
				continue
			}
			order = append(order, a.Owner)
		}
		if totals[a.Owner] >= 0 {
			totals[a.Owner] += a.Amount
		}
	}

	holders := make([]holder, 0, len(order))
	for _, owner := range order {
		holders = append(holders, holder{owner: owner, amount: totals[owner]})
	}
	return holders
}

// resolveBalances fetches the native balance for the top holders. A holder
// whose balance cannot be read is excluded from the run rather than failing
// it, and the next holder in token-amount order takes the slot.
func (e *Engine) resolveBalances(ctx context.Context, holders []holder) []*domain.WalletSnapshot {
	sort.SliceStable(holders, func(i, j int) bool {
		return holders[i].amount > holders[j].amount
	})

	wallets := make([]*domain.WalletSnapshot, 0, e.limit)
	for _, h := range holders {
		if len(wallets) == e.limit {
			break
		}
		balance, err := e.client.GetBalance(ctx, h.owner)
		if err != nil {
			e.logger.Printf("excluding %s, balance lookup failed: %v", h.owner, err)
			continue
		}
		wallets = append(wallets, &domain.WalletSnapshot{
			Address:     h.owner,
			Balance:     balance,
			TokenAmount: h.amount,
		})
	}
	return wallets
}

// sortAndRank orders wallets by token amount descending and assigns
// contiguous ranks starting at 1. The sort is stable so equal holdings keep
// their ledger order across runs.
func (e *Engine) sortAndRank(wallets []*domain.WalletSnapshot) {
	sort.SliceStable(wallets, func(i, j int) bool {
		return wallets[i].TokenAmount > wallets[j].TokenAmount
	})
	for i, w := range wallets {
		w.Rank = i + 1
	}
}

// isOnCurve reports whether the address decodes to a point on the ed25519
// curve. Program-derived addresses are constructed off-curve.
func isOnCurve(address string) bool {
	raw, err := base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}
