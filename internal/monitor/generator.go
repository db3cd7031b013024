package monitor

import (
	"crypto/rand"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/mr-tron/base58"

	"tokenwise/internal/domain"
	"tokenwise/internal/idhash"
)

// Generator produces synthetic transaction events for a wallet set. The
// production loop treats it as the single source of event content, so a
// different implementation can feed the same pipeline from a real
// transaction stream.
type Generator interface {
	// Next builds one event attributed to one of the given wallets.
	Next(wallets []string) *domain.TransactionEvent
	// Delay returns how long to wait before the next event.
	Delay() time.Duration
}

// Venues a generated swap can be attributed to.
var venues = []string{"Jupiter", "Raydium", "Orca", "Serum"}

// Bounds for generated event content.
const (
	minAmount  = 100.0
	amountSpan = 10_000.0
	minPrice   = 0.0001
	priceSpan  = 0.001

	minDelay  = time.Second
	delaySpan = 9 * time.Second
)

// RandomGenerator emits uniformly random swap events. Safe for concurrent
// use.
type RandomGenerator struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewRandomGenerator creates a generator seeded from the clock.
func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{
		rng: mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
}

// Compile-time interface check.
var _ Generator = (*RandomGenerator)(nil)

// Next builds one random event for a uniformly chosen wallet. Returns nil
// when the wallet set is empty.
func (g *RandomGenerator) Next(wallets []string) *domain.TransactionEvent {
	if len(wallets) == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	wallet := wallets[g.rng.Intn(len(wallets))]
	eventType := domain.EventTypeBuy
	if g.rng.Intn(2) == 1 {
		eventType = domain.EventTypeSell
	}

	now := time.Now().UTC()
	signature := randomSignature()

	return &domain.TransactionEvent{
		ID:            idhash.ComputeEventID(wallet, signature, now.UnixMilli()),
		WalletAddress: wallet,
		Type:          eventType,
		Amount:        minAmount + g.rng.Float64()*amountSpan,
		Price:         minPrice + g.rng.Float64()*priceSpan,
		Protocol:      venues[g.rng.Intn(len(venues))],
		Timestamp:     now,
		Signature:     signature,
	}
}

// Delay returns a uniform wait between one and ten seconds.
func (g *RandomGenerator) Delay() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return minDelay + time.Duration(g.rng.Int63n(int64(delaySpan)))
}

// randomSignature returns a base58-encoded random 64-byte value, shaped
// like a real transaction signature.
func randomSignature() string {
	raw := make([]byte, 64)
	rand.Read(raw)
	return base58.Encode(raw)
}
