// Package stub provides fixed in-memory ledger clients for testing.
package stub

import (
	"context"
	"sync"

	"tokenwise/internal/solana"
)

// Client returns scripted responses instead of calling a real endpoint.
// Implements solana.Client.
type Client struct {
	mu sync.Mutex

	// Accounts returned by GetTokenHolders, keyed by mint.
	Accounts map[string][]solana.TokenAccount
	// Balances returned by GetBalance, keyed by account.
	Balances map[string]float64
	// Err, when set, fails every call.
	Err error
	// BalanceErrs fails GetBalance for specific accounts only.
	BalanceErrs map[string]error

	holderCalls  int
	balanceCalls int
}

// NewClient creates an empty stub client.
func NewClient() *Client {
	return &Client{
		Accounts:    make(map[string][]solana.TokenAccount),
		Balances:    make(map[string]float64),
		BalanceErrs: make(map[string]error),
	}
}

// GetTokenHolders returns the scripted accounts for the mint.
func (c *Client) GetTokenHolders(_ context.Context, mint string) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.holderCalls++
	if c.Err != nil {
		return nil, c.Err
	}

	accounts := make([]solana.TokenAccount, len(c.Accounts[mint]))
	copy(accounts, c.Accounts[mint])
	return accounts, nil
}

// GetBalance returns the scripted balance for the account.
func (c *Client) GetBalance(_ context.Context, account string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.balanceCalls++
	if c.Err != nil {
		return 0, c.Err
	}
	if err := c.BalanceErrs[account]; err != nil {
		return 0, err
	}
	return c.Balances[account], nil
}

// HolderCalls returns how many GetTokenHolders calls were made.
func (c *Client) HolderCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.holderCalls
}

// BalanceCalls returns how many GetBalance calls were made.
func (c *Client) BalanceCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balanceCalls
}

// Compile-time interface check.
var _ solana.Client = (*Client)(nil)
