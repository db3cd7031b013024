// Package main generates an offline activity report from stored data:
// REPORT.md plus CSV/JSON exports of the transaction window.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tokenwise/internal/domain"
	"tokenwise/internal/reporting"
	"tokenwise/internal/storage"
	"tokenwise/internal/storage/memory"
	pgstore "tokenwise/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of a database")
	limit := flag.Int("limit", 60, "How many top wallets to include")
	hours := flag.Int("hours", 24, "Trailing window in hours")
	flag.Parse()

	ctx := context.Background()

	if !*useFixtures && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	var (
		walletStore storage.WalletStore
		eventStore  storage.EventStore
	)

	if *useFixtures {
		walletStore, eventStore = createFixtureStores(ctx)
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()

		walletStore = pgstore.NewWalletStore(pool)
		eventStore = pgstore.NewEventStore(pool)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	window := time.Duration(*hours) * time.Hour
	generator := reporting.NewGenerator(walletStore, eventStore)

	report, err := generator.Generate(ctx, *limit, window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := writeFile(*outputDir, "REPORT.md", reporting.RenderMarkdown(report)); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	events, err := eventStore.EventsSince(ctx, time.Now().UTC().Add(-window))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading events: %v\n", err)
		os.Exit(1)
	}

	csvBody, err := reporting.RenderCSV(events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering CSV: %v\n", err)
		os.Exit(1)
	}
	if err := writeFile(*outputDir, "transactions.csv", csvBody); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
		os.Exit(1)
	}

	jsonBody, err := reporting.RenderJSON(events)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering JSON: %v\n", err)
		os.Exit(1)
	}
	if err := writeFile(*outputDir, "transactions.json", jsonBody); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report generated in %s/: %d wallets, %d events in the last %dh\n",
		*outputDir, report.WalletCount, report.EventCount, *hours)
}

func writeFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
}

// createFixtureStores seeds memory stores with demo data.
func createFixtureStores(ctx context.Context) (storage.WalletStore, storage.EventStore) {
	walletStore := memory.NewWalletStore()
	eventStore := memory.NewEventStore()
	now := time.Now().UTC()

	wallets := []*domain.WalletSnapshot{
		{Address: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", Balance: 2.4, TokenAmount: 91_000, Rank: 1},
		{Address: "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", Balance: 0.8, TokenAmount: 44_500, Rank: 2},
		{Address: "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1", Balance: 1.1, TokenAmount: 12_250, Rank: 3},
	}
	if err := walletStore.UpsertSnapshot(ctx, wallets); err != nil {
		panic(err)
	}

	events := []*domain.TransactionEvent{
		{ID: "fixture-1", WalletAddress: wallets[0].Address, Type: domain.EventTypeBuy, Amount: 2_500, Price: 0.00042, Protocol: "Jupiter", Timestamp: now.Add(-3 * time.Hour), Signature: "fixture-sig-1"},
		{ID: "fixture-2", WalletAddress: wallets[1].Address, Type: domain.EventTypeSell, Amount: 1_200, Price: 0.00038, Protocol: "Raydium", Timestamp: now.Add(-90 * time.Minute), Signature: "fixture-sig-2"},
		{ID: "fixture-3", WalletAddress: wallets[0].Address, Type: domain.EventTypeBuy, Amount: 640, Price: 0.00045, Protocol: "Orca", Timestamp: now.Add(-20 * time.Minute), Signature: "fixture-sig-3"},
	}
	for _, e := range events {
		if err := eventStore.UpsertEvent(ctx, e); err != nil {
			panic(err)
		}
	}

	return walletStore, eventStore
}
