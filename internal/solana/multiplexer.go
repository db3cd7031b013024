package solana

import (
	"context"
	"fmt"
	"log"
	"sync"

	"tokenwise/internal/observability"
)

// Multiplexer fans a Client contract out over several redundant endpoints.
//
// It holds an ordered endpoint list and a cursor to the active one. A call
// that fails with a classified rate-limit error rotates the cursor to the
// next endpoint (wrapping) and is retried there, up to one attempt per
// endpoint. Any other error class is fatal to the call and propagates
// without rotating.
type Multiplexer struct {
	mu      sync.Mutex
	clients []Client
	cursor  int
	logger  *log.Logger
}

// NewMultiplexer creates a multiplexer over the given endpoint URLs.
func NewMultiplexer(endpoints []string, logger *log.Logger) (*Multiplexer, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints configured")
	}

	clients := make([]Client, 0, len(endpoints))
	for _, e := range endpoints {
		clients = append(clients, NewHTTPClient(e))
	}

	return NewMultiplexerWithClients(clients, logger)
}

// NewMultiplexerWithClients creates a multiplexer over pre-built clients.
// Used by tests to substitute fakes.
func NewMultiplexerWithClients(clients []Client, logger *log.Logger) (*Multiplexer, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("no clients configured")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Multiplexer{clients: clients, logger: logger}, nil
}

// NumEndpoints returns how many endpoints are configured.
func (m *Multiplexer) NumEndpoints() int {
	return len(m.clients)
}

// ActiveIndex returns the cursor position of the currently active endpoint.
func (m *Multiplexer) ActiveIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// active returns the client under the cursor.
func (m *Multiplexer) active() Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[m.cursor]
}

// rotate advances the cursor to the next endpoint, wrapping.
func (m *Multiplexer) rotate() {
	m.mu.Lock()
	m.cursor = (m.cursor + 1) % len(m.clients)
	next := m.cursor
	m.mu.Unlock()

	observability.RecordEndpointRotation()
	m.logger.Printf("rotating to endpoint %d of %d", next+1, len(m.clients))
}

// GetTokenHolders fetches holder token accounts, rotating endpoints on
// rate-limit failures.
func (m *Multiplexer) GetTokenHolders(ctx context.Context, mint string) ([]TokenAccount, error) {
	var accounts []TokenAccount
	err := m.do(ctx, func(ctx context.Context, c Client) error {
		var err error
		accounts, err = c.GetTokenHolders(ctx, mint)
		return err
	})
	return accounts, err
}

// GetBalance fetches a native balance, rotating endpoints on rate-limit
// failures.
func (m *Multiplexer) GetBalance(ctx context.Context, account string) (float64, error) {
	var balance float64
	err := m.do(ctx, func(ctx context.Context, c Client) error {
		var err error
		balance, err = c.GetBalance(ctx, account)
		return err
	})
	return balance, err
}

// do runs one logical call with at most one attempt per endpoint.
func (m *Multiplexer) do(ctx context.Context, call func(context.Context, Client) error) error {
	var lastErr error

	for attempt := 0; attempt < len(m.clients); attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := call(ctx, m.active())
		if err == nil {
			return nil
		}

		if !IsRateLimited(err) {
			// Malformed input, decode failures and the like are fatal to
			// this call; trying another endpoint would not help.
			return err
		}

		lastErr = err
		m.rotate()
	}

	return fmt.Errorf("%w: %w", ErrAllEndpointsFailed, lastErr)
}

// Compile-time interface check.
var _ Client = (*Multiplexer)(nil)
