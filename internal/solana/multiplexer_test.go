package solana

import (
	"context"
	"errors"
	"log"
	"testing"
)

// fakeClient scripts one endpoint's behavior for multiplexer tests.
type fakeClient struct {
	err      error
	accounts []TokenAccount
	balance  float64
	calls    int
}

func (f *fakeClient) GetTokenHolders(_ context.Context, _ string) ([]TokenAccount, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts, nil
}

func (f *fakeClient) GetBalance(_ context.Context, _ string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.balance, nil
}

func newTestMux(t *testing.T, clients ...Client) *Multiplexer {
	t.Helper()
	mux, err := NewMultiplexerWithClients(clients, log.Default())
	if err != nil {
		t.Fatalf("NewMultiplexerWithClients: %v", err)
	}
	return mux
}

func TestMultiplexer_RotatesOnRateLimit(t *testing.T) {
	a := &fakeClient{err: rateLimitf("endpoint A throttled")}
	b := &fakeClient{err: rateLimitf("endpoint B throttled")}
	c := &fakeClient{accounts: []TokenAccount{{Address: "ta1", Owner: "w1", Amount: 10}}}

	mux := newTestMux(t, a, b, c)

	accounts, err := mux.GetTokenHolders(context.Background(), "mint")
	if err != nil {
		t.Fatalf("GetTokenHolders: %v", err)
	}

	if len(accounts) != 1 || accounts[0].Owner != "w1" {
		t.Errorf("expected account from endpoint C, got %+v", accounts)
	}

	// Cursor must end on the endpoint that served the call.
	if mux.ActiveIndex() != 2 {
		t.Errorf("expected cursor on endpoint 2, got %d", mux.ActiveIndex())
	}

	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Errorf("expected one attempt per endpoint, got %d/%d/%d", a.calls, b.calls, c.calls)
	}
}

func TestMultiplexer_AllEndpointsFail(t *testing.T) {
	a := &fakeClient{err: rateLimitf("throttled")}
	b := &fakeClient{err: rateLimitf("throttled")}

	mux := newTestMux(t, a, b)

	_, err := mux.GetBalance(context.Background(), "wallet")
	if !errors.Is(err, ErrAllEndpointsFailed) {
		t.Fatalf("expected ErrAllEndpointsFailed, got %v", err)
	}

	// Exhaustion is still rate-limit classified for upstream checks.
	if !IsRateLimited(err) {
		t.Errorf("expected rate-limit classification to survive wrapping: %v", err)
	}
}

func TestMultiplexer_FatalErrorDoesNotRotate(t *testing.T) {
	fatal := errors.New("Invalid param: WrongSize")
	a := &fakeClient{err: fatal}
	b := &fakeClient{balance: 5}

	mux := newTestMux(t, a, b)

	_, err := mux.GetBalance(context.Background(), "wallet")
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error to propagate, got %v", err)
	}

	if mux.ActiveIndex() != 0 {
		t.Errorf("cursor must not rotate on non-rate-limit errors, got %d", mux.ActiveIndex())
	}

	if b.calls != 0 {
		t.Errorf("second endpoint must not be tried, got %d calls", b.calls)
	}
}

func TestMultiplexer_CursorWraps(t *testing.T) {
	a := &fakeClient{err: rateLimitf("throttled")}
	b := &fakeClient{err: rateLimitf("throttled")}
	c := &fakeClient{err: rateLimitf("throttled")}

	mux := newTestMux(t, a, b, c)

	_, err := mux.GetBalance(context.Background(), "wallet")
	if !errors.Is(err, ErrAllEndpointsFailed) {
		t.Fatalf("expected ErrAllEndpointsFailed, got %v", err)
	}

	// Three rotations over three endpoints wrap back to the start.
	if mux.ActiveIndex() != 0 {
		t.Errorf("expected cursor wrapped to 0, got %d", mux.ActiveIndex())
	}
}

func TestNewMultiplexer_RequiresEndpoints(t *testing.T) {
	if _, err := NewMultiplexer(nil, nil); err == nil {
		t.Fatal("expected error for empty endpoint list")
	}
}
