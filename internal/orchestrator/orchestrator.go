// Package orchestrator wires the tracking pipeline together.
// It coordinates: ranking → persistence → broadcast → monitoring.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tokenwise/internal/domain"
	"tokenwise/internal/hub"
	"tokenwise/internal/monitor"
	"tokenwise/internal/observability"
	"tokenwise/internal/ranking"
	"tokenwise/internal/storage"
)

// Orchestrator owns the rank-then-monitor cycle.
//
// A cycle ranks the top holders, persists the snapshot, broadcasts the new
// wallet set and points the monitor at it. Cycles run once at bootstrap, on
// a timer, and on demand.
type Orchestrator struct {
	engine      *ranking.Engine
	walletStore storage.WalletStore
	monitor     *monitor.Monitor
	hub         *hub.Hub
	logger      *log.Logger

	interval time.Duration

	mu      sync.Mutex
	current *domain.Ranking
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Options for creating an Orchestrator. All dependencies are injected.
type Options struct {
	// Engine computes holder rankings. Required.
	Engine *ranking.Engine
	// WalletStore persists ranking snapshots. Required.
	WalletStore storage.WalletStore
	// Monitor produces events for the ranked wallets. Required.
	Monitor *monitor.Monitor
	// Hub broadcasts ranking refreshes. Required.
	Hub *hub.Hub
	// RerankInterval schedules periodic reranks; zero disables the timer.
	RerankInterval time.Duration
	// Logger receives cycle diagnostics.
	Logger *log.Logger
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("orchestrator: engine is required")
	}
	if opts.WalletStore == nil {
		return nil, fmt.Errorf("orchestrator: wallet store is required")
	}
	if opts.Monitor == nil {
		return nil, fmt.Errorf("orchestrator: monitor is required")
	}
	if opts.Hub == nil {
		return nil, fmt.Errorf("orchestrator: hub is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Orchestrator{
		engine:      opts.Engine,
		walletStore: opts.WalletStore,
		monitor:     opts.Monitor,
		hub:         opts.Hub,
		interval:    opts.RerankInterval,
		logger:      opts.Logger,
	}, nil
}

// CurrentRanking returns the latest completed ranking, or nil before the
// first cycle.
func (o *Orchestrator) CurrentRanking() *domain.Ranking {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Bootstrap runs the first ranking cycle, starts the monitor and, when an
// interval is configured, the periodic rerank loop.
func (o *Orchestrator) Bootstrap(ctx context.Context) error {
	if err := o.Rerank(ctx); err != nil {
		return fmt.Errorf("initial ranking: %w", err)
	}

	o.monitor.Start(ctx)

	if o.interval > 0 {
		loopCtx, cancel := context.WithCancel(ctx)
		o.mu.Lock()
		o.cancel = cancel
		o.mu.Unlock()

		o.wg.Add(1)
		go o.rerankLoop(loopCtx)
	}

	return nil
}

// Shutdown stops the rerank loop and the monitor.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.wg.Wait()

	o.monitor.Stop()
}

// Rerank runs one ranking cycle: rank, persist, broadcast, reconcile the
// monitored set. A placeholder ranking is broadcast but does not touch
// storage or the monitored set, so stale real data survives an outage.
func (o *Orchestrator) Rerank(ctx context.Context) error {
	start := time.Now()

	rank, err := o.engine.RankTopHolders(ctx)
	if err != nil {
		return err
	}
	observability.RecordRankingRun(rank.Placeholder, rank.Generation, len(rank.Wallets), time.Since(start).Seconds())

	o.mu.Lock()
	o.current = rank
	o.mu.Unlock()

	if rank.Placeholder {
		o.logger.Printf("generation %d is placeholder data, monitored set unchanged", rank.Generation)
		o.hub.Publish(hub.WalletsMessage(rank))
		return nil
	}

	if err := o.walletStore.UpsertSnapshot(ctx, rank.Wallets); err != nil {
		return fmt.Errorf("persist ranking: %w", err)
	}

	o.hub.Publish(hub.WalletsMessage(rank))
	o.monitor.SetWallets(rank.Addresses())

	o.logger.Printf("generation %d ranked %d wallets in %s",
		rank.Generation, len(rank.Wallets), time.Since(start).Round(time.Millisecond))
	return nil
}

// rerankLoop reranks on the configured interval until cancelled.
func (o *Orchestrator) rerankLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := o.Rerank(ctx); err != nil {
				o.logger.Printf("scheduled rerank failed: %v", err)
			}
		}
	}
}
