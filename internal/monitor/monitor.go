// Package monitor watches a wallet set and produces its transaction events.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"tokenwise/internal/hub"
	"tokenwise/internal/observability"
	"tokenwise/internal/storage"
)

// State of the monitor lifecycle.
type State int

const (
	StateIdle State = iota
	StateMonitoring
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMonitoring:
		return "monitoring"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Monitor runs the event production loop over a mutable wallet set.
//
// Lifecycle: a new monitor is Idle. Start moves it to Monitoring and spawns
// the loop; Stop cancels the loop, clears the wallet set and leaves it
// Stopped. A stopped monitor can be started again. Starting an already
// running monitor is a logged no-op.
//
// Each produced event is persisted and broadcast independently; a failure
// on one path never suppresses the other.
type Monitor struct {
	gen    Generator
	store  storage.EventStore
	hub    *hub.Hub
	logger *log.Logger

	mu      sync.Mutex
	state   State
	wallets map[string]struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Options configures a Monitor.
type Options struct {
	// Generator produces event content. Required.
	Generator Generator
	// Store persists produced events. Required.
	Store storage.EventStore
	// Hub broadcasts produced events. Required.
	Hub *hub.Hub
	// Logger receives loop diagnostics.
	Logger *log.Logger
}

// New creates an idle monitor.
func New(opts Options) (*Monitor, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("monitor: generator is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("monitor: store is required")
	}
	if opts.Hub == nil {
		return nil, fmt.Errorf("monitor: hub is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Monitor{
		gen:     opts.Generator,
		store:   opts.Store,
		hub:     opts.Hub,
		logger:  opts.Logger,
		state:   StateIdle,
		wallets: make(map[string]struct{}),
	}, nil
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start launches the production loop. Calling Start while the monitor is
// already running does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.state == StateMonitoring {
		m.mu.Unlock()
		m.logger.Printf("start ignored, already monitoring")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.state = StateMonitoring
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loop(loopCtx)

	m.logger.Printf("started")
}

// Stop halts the production loop, waits for it to exit and clears the
// wallet set. Stopping an idle or stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state != StateMonitoring {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.mu.Lock()
	m.state = StateStopped
	m.wallets = make(map[string]struct{})
	m.mu.Unlock()

	m.logger.Printf("stopped")
}

// AddWallet adds one wallet to the monitored set.
func (m *Monitor) AddWallet(address string) {
	if address == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[address] = struct{}{}
}

// RemoveWallet removes one wallet from the monitored set.
func (m *Monitor) RemoveWallet(address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wallets, address)
}

// SetWallets replaces the monitored set wholesale, as happens after a
// ranking refresh.
func (m *Monitor) SetWallets(addresses []string) {
	next := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		if a != "" {
			next[a] = struct{}{}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets = next
}

// MonitoredWallets returns the current wallet set, sorted for stable
// output.
func (m *Monitor) MonitoredWallets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	addresses := make([]string, 0, len(m.wallets))
	for a := range m.wallets {
		addresses = append(addresses, a)
	}
	sort.Strings(addresses)
	return addresses
}

// loop produces events until the context is cancelled.
func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()

	timer := time.NewTimer(m.gen.Delay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		m.produce(ctx)
		timer.Reset(m.gen.Delay())
	}
}

// produce emits one event if any wallets are monitored.
func (m *Monitor) produce(ctx context.Context) {
	wallets := m.MonitoredWallets()
	if len(wallets) == 0 {
		return
	}

	event := m.gen.Next(wallets)
	if event == nil {
		return
	}
	observability.RecordEventGenerated(string(event.Type))
	observability.UpdateMonitoredWallets(len(wallets))

	m.hub.Publish(hub.TransactionMessage(event))

	err := m.store.UpsertEvent(ctx, event)
	observability.RecordEventStored(err)
	if err != nil {
		m.logger.Printf("persist failed for event %s: %v", event.ID, err)
	}
}
