package postgres

import (
	"context"
	"fmt"
	"time"

	"tokenwise/internal/domain"
	"tokenwise/internal/observability"
	"tokenwise/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// UpsertSnapshot persists a full ranking generation in one transaction.
// Each wallet is upserted by address, last-write-wins.
func (s *WalletStore) UpsertSnapshot(ctx context.Context, wallets []*domain.WalletSnapshot) error {
	for _, w := range wallets {
		if w == nil {
			return storage.ErrInvalidInput
		}
		if err := w.Validate(); err != nil {
			return err
		}
	}
	if len(wallets) == 0 {
		return nil
	}

	start := time.Now()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		observability.RecordDBQuery("postgres", "upsert_snapshot", time.Since(start).Seconds(), err)
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO wallets (address, balance, token_amount, rank, last_activity, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (address) DO UPDATE SET
			balance = EXCLUDED.balance,
			token_amount = EXCLUDED.token_amount,
			rank = EXCLUDED.rank,
			last_activity = EXCLUDED.last_activity,
			updated_at = NOW()
	`

	for _, w := range wallets {
		_, err := tx.Exec(ctx, query,
			w.Address,
			w.Balance,
			w.TokenAmount,
			w.Rank,
			w.LastActivity,
		)
		if err != nil {
			observability.RecordDBQuery("postgres", "upsert_snapshot", time.Since(start).Seconds(), err)
			return fmt.Errorf("upsert wallet %s: %w", w.Address, err)
		}
	}

	err = tx.Commit(ctx)
	observability.RecordDBQuery("postgres", "upsert_snapshot", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// TopWallets retrieves up to limit wallets ordered by rank ascending.
func (s *WalletStore) TopWallets(ctx context.Context, limit int) ([]*domain.WalletSnapshot, error) {
	query := `
		SELECT address, balance, token_amount, rank, last_activity
		FROM wallets
		ORDER BY rank ASC
		LIMIT $1
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, limit)
	observability.RecordDBQuery("postgres", "top_wallets", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query top wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.WalletSnapshot
	for rows.Next() {
		var w domain.WalletSnapshot
		if err := rows.Scan(&w.Address, &w.Balance, &w.TokenAmount, &w.Rank, &w.LastActivity); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}
