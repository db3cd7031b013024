package orchestrator

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"tokenwise/internal/hub"
	"tokenwise/internal/monitor"
	"tokenwise/internal/ranking"
	"tokenwise/internal/solana"
	"tokenwise/internal/solana/stub"
	"tokenwise/internal/storage/memory"
)

const testMint = "9BB6NFEcjBCtnNLFko2FqVQBq8HHM13kCyYcdQbgpump"

const (
	ownerA = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	ownerB = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fixture struct {
	orch        *Orchestrator
	client      *stub.Client
	hub         *hub.Hub
	monitor     *monitor.Monitor
	walletStore *memory.WalletStore
	eventStore  *memory.EventStore
}

func newFixture(t *testing.T, interval time.Duration) *fixture {
	t.Helper()

	client := stub.NewClient()
	client.Accounts[testMint] = []solana.TokenAccount{
		{Address: "acc1", Owner: ownerA, Amount: 900},
		{Address: "acc2", Owner: ownerB, Amount: 400},
	}
	client.Balances[ownerA] = 1.5
	client.Balances[ownerB] = 0.5

	engine, err := ranking.NewEngine(ranking.Options{
		Client: client,
		Mint:   testMint,
		Limit:  10,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	h := hub.NewHub(64, quietLogger())
	eventStore := memory.NewEventStore()
	walletStore := memory.NewWalletStore()

	mon, err := monitor.New(monitor.Options{
		Generator: monitor.NewRandomGenerator(),
		Store:     eventStore,
		Hub:       h,
		Logger:    quietLogger(),
	})
	if err != nil {
		t.Fatalf("monitor.New failed: %v", err)
	}

	orch, err := New(Options{
		Engine:         engine,
		WalletStore:    walletStore,
		Monitor:        mon,
		Hub:            h,
		RerankInterval: interval,
		Logger:         quietLogger(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	return &fixture{
		orch:        orch,
		client:      client,
		hub:         h,
		monitor:     mon,
		walletStore: walletStore,
		eventStore:  eventStore,
	}
}

func TestOrchestrator_BootstrapRanksAndStartsMonitoring(t *testing.T) {
	f := newFixture(t, 0)
	defer f.orch.Shutdown()

	sub := f.hub.Subscribe()
	defer f.hub.Unsubscribe(sub)

	if err := f.orch.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	// Ranking was persisted.
	wallets, err := f.walletStore.TopWallets(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopWallets failed: %v", err)
	}
	if len(wallets) != 2 || wallets[0].Address != ownerA {
		t.Fatalf("persisted ranking wrong: %+v", wallets)
	}

	// Ranking was broadcast.
	select {
	case msg := <-sub:
		if msg.Kind != hub.KindWallets || len(msg.Wallets) != 2 {
			t.Fatalf("broadcast = %+v, want wallets message with 2 entries", msg)
		}
		if msg.Placeholder {
			t.Error("real ranking broadcast as placeholder")
		}
	default:
		t.Fatal("no wallets broadcast after Bootstrap")
	}

	// Monitor runs over the ranked set.
	if f.monitor.State() != monitor.StateMonitoring {
		t.Fatalf("monitor state = %v, want monitoring", f.monitor.State())
	}
	got := f.monitor.MonitoredWallets()
	if len(got) != 2 {
		t.Fatalf("monitored set = %v, want 2 wallets", got)
	}

	if r := f.orch.CurrentRanking(); r == nil || r.Generation != 1 {
		t.Fatalf("CurrentRanking = %+v, want generation 1", r)
	}
}

func TestOrchestrator_RerankReconcilesMonitoredSet(t *testing.T) {
	f := newFixture(t, 0)
	defer f.orch.Shutdown()

	if err := f.orch.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	// Holder set shifts: ownerB leaves.
	f.client.Accounts[testMint] = []solana.TokenAccount{
		{Address: "acc1", Owner: ownerA, Amount: 900},
	}

	if err := f.orch.Rerank(context.Background()); err != nil {
		t.Fatalf("Rerank failed: %v", err)
	}

	got := f.monitor.MonitoredWallets()
	if len(got) != 1 || got[0] != ownerA {
		t.Fatalf("monitored set = %v, want [%s]", got, ownerA)
	}
	if r := f.orch.CurrentRanking(); r.Generation != 2 {
		t.Fatalf("generation = %d, want 2", r.Generation)
	}
}

func TestOrchestrator_PlaceholderKeepsMonitoredSet(t *testing.T) {
	f := newFixture(t, 0)
	defer f.orch.Shutdown()

	if err := f.orch.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	before := f.monitor.MonitoredWallets()

	sub := f.hub.Subscribe()
	defer f.hub.Unsubscribe(sub)

	// Every endpoint down.
	f.client.Err = solana.ErrAllEndpointsFailed

	if err := f.orch.Rerank(context.Background()); err != nil {
		t.Fatalf("Rerank failed: %v", err)
	}

	// Placeholder is broadcast, flagged.
	select {
	case msg := <-sub:
		if !msg.Placeholder {
			t.Error("placeholder broadcast not flagged")
		}
	default:
		t.Fatal("no broadcast for placeholder ranking")
	}

	// The monitored set and stored snapshot keep the last real data.
	after := f.monitor.MonitoredWallets()
	if len(after) != len(before) {
		t.Fatalf("monitored set changed on placeholder: %v -> %v", before, after)
	}
	wallets, err := f.walletStore.TopWallets(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopWallets failed: %v", err)
	}
	if len(wallets) != 2 {
		t.Fatalf("stored snapshot changed on placeholder: %+v", wallets)
	}
	if r := f.orch.CurrentRanking(); !r.Placeholder {
		t.Error("CurrentRanking not marked placeholder")
	}
}

func TestOrchestrator_ScheduledRerank(t *testing.T) {
	f := newFixture(t, 20*time.Millisecond)

	if err := f.orch.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for f.orch.CurrentRanking().Generation < 3 {
		select {
		case <-deadline:
			t.Fatal("scheduled reranks did not advance the generation")
		case <-time.After(10 * time.Millisecond):
		}
	}

	f.orch.Shutdown()
	if f.monitor.State() != monitor.StateStopped {
		t.Fatalf("monitor state after Shutdown = %v, want stopped", f.monitor.State())
	}

	// No further reranks after shutdown.
	gen := f.orch.CurrentRanking().Generation
	time.Sleep(60 * time.Millisecond)
	if got := f.orch.CurrentRanking().Generation; got != gen {
		t.Errorf("generation advanced after Shutdown: %d -> %d", gen, got)
	}
}
