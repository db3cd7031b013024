package solana

import "context"

// TokenProgramID is the SPL token program that owns all token accounts.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// TokenAccountSize is the byte size of an SPL token account, used as the
// dataSize filter for getProgramAccounts.
const TokenAccountSize = 165

// LamportsPerSOL converts lamports to SOL.
const LamportsPerSOL = 1e9

// TokenAccount is one parsed SPL token account holding the tracked mint.
type TokenAccount struct {
	// Address is the token account itself, not the owning wallet.
	Address string
	// Owner is the wallet that controls the token account.
	Owner string
	// Amount is the UI amount of the tracked token in the account.
	Amount float64
}

// Client is the read-only ledger surface the pipeline consumes.
// Implemented by HTTPClient (one endpoint) and Multiplexer (many).
type Client interface {
	// GetTokenHolders returns all token accounts for the given mint,
	// discovered via a dataSize + mint-prefix filtered program account scan.
	GetTokenHolders(ctx context.Context, mint string) ([]TokenAccount, error)

	// GetBalance returns the native SOL balance of an account.
	GetBalance(ctx context.Context, account string) (float64, error)
}
