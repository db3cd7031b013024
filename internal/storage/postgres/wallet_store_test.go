package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenwise/internal/domain"
)

func makeSnapshot(address string, rank int, tokenAmount float64) *domain.WalletSnapshot {
	return &domain.WalletSnapshot{
		Address:     address,
		Balance:     1.5,
		TokenAmount: tokenAmount,
		Rank:        rank,
	}
}

func TestWalletStore_UpsertAndTop(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	err := store.UpsertSnapshot(ctx, []*domain.WalletSnapshot{
		makeSnapshot("W2", 2, 500),
		makeSnapshot("W1", 1, 900),
		makeSnapshot("W3", 3, 100),
	})
	require.NoError(t, err)

	wallets, err := store.TopWallets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, wallets, 3)

	// Ordered by rank ascending.
	assert.Equal(t, "W1", wallets[0].Address)
	assert.Equal(t, "W2", wallets[1].Address)
	assert.Equal(t, "W3", wallets[2].Address)
	assert.Equal(t, 1, wallets[0].Rank)
	assert.InDelta(t, 900, wallets[0].TokenAmount, 1e-9)
}

func TestWalletStore_UpsertOverwrites(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	require.NoError(t, store.UpsertSnapshot(ctx, []*domain.WalletSnapshot{
		makeSnapshot("W1", 1, 900),
	}))

	updated := makeSnapshot("W1", 4, 250)
	activity := time.Now().UTC().Truncate(time.Microsecond)
	updated.LastActivity = ptr(activity)
	require.NoError(t, store.UpsertSnapshot(ctx, []*domain.WalletSnapshot{updated}))

	wallets, err := store.TopWallets(ctx, 10)
	require.NoError(t, err)
	require.Len(t, wallets, 1)

	assert.Equal(t, 4, wallets[0].Rank)
	assert.InDelta(t, 250, wallets[0].TokenAmount, 1e-9)
	require.NotNil(t, wallets[0].LastActivity)
	assert.True(t, wallets[0].LastActivity.Equal(activity))
}

func TestWalletStore_TopWalletsLimit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	var batch []*domain.WalletSnapshot
	for i := 1; i <= 5; i++ {
		addr := string(rune('A' + i - 1))
		batch = append(batch, makeSnapshot(addr, i, float64(1000-i)))
	}
	require.NoError(t, store.UpsertSnapshot(ctx, batch))

	wallets, err := store.TopWallets(ctx, 3)
	require.NoError(t, err)
	require.Len(t, wallets, 3)
	assert.Equal(t, 1, wallets[0].Rank)
	assert.Equal(t, 3, wallets[2].Rank)
}

func TestWalletStore_RejectsInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewWalletStore(pool)
	ctx := context.Background()

	err := store.UpsertSnapshot(ctx, []*domain.WalletSnapshot{makeSnapshot("", 1, 100)})
	assert.Error(t, err)

	err = store.UpsertSnapshot(ctx, []*domain.WalletSnapshot{makeSnapshot("W1", 0, 100)})
	assert.Error(t, err)

	require.NoError(t, store.UpsertSnapshot(ctx, nil))
}
