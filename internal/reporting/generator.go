package reporting

import (
	"context"
	"sort"
	"time"

	"tokenwise/internal/domain"
	"tokenwise/internal/storage"
)

// Generator produces activity reports from stored data.
type Generator struct {
	walletStore storage.WalletStore
	eventStore  storage.EventStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(walletStore storage.WalletStore, eventStore storage.EventStore) *Generator {
	return &Generator{
		walletStore: walletStore,
		eventStore:  eventStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds an activity report covering the trailing window.
func (g *Generator) Generate(ctx context.Context, walletLimit int, window time.Duration) (*ActivityReport, error) {
	now := g.now()

	wallets, err := g.walletStore.TopWallets(ctx, walletLimit)
	if err != nil {
		return nil, err
	}

	events, err := g.eventStore.EventsSince(ctx, now.Add(-window))
	if err != nil {
		return nil, err
	}

	report := &ActivityReport{
		GeneratedAt: now,
		Window:      window,
		WalletCount: len(wallets),
		EventCount:  len(events),
	}

	eventsPerWallet := make(map[string]int)
	venueEvents := make(map[string]int)
	venueVolume := make(map[string]float64)

	for _, e := range events {
		eventsPerWallet[e.WalletAddress]++
		venueEvents[e.Protocol]++
		venueVolume[e.Protocol] += e.Amount

		switch e.Type {
		case domain.EventTypeBuy:
			report.BuyCount++
			report.BuyVolume += e.Amount
		case domain.EventTypeSell:
			report.SellCount++
			report.SellVolume += e.Amount
		}
	}

	for _, w := range wallets {
		report.TopWallets = append(report.TopWallets, WalletRow{
			Rank:        w.Rank,
			Address:     w.Address,
			TokenAmount: w.TokenAmount,
			Balance:     w.Balance,
			Events:      eventsPerWallet[w.Address],
		})
	}

	for venue, count := range venueEvents {
		report.VenueBreakdown = append(report.VenueBreakdown, VenueRow{
			Venue:  venue,
			Events: count,
			Volume: venueVolume[venue],
		})
	}
	sort.Slice(report.VenueBreakdown, func(i, j int) bool {
		a, b := report.VenueBreakdown[i], report.VenueBreakdown[j]
		if a.Events != b.Events {
			return a.Events > b.Events
		}
		return a.Venue < b.Venue
	})

	return report, nil
}
