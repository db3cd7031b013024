// Package main runs the token tracking service:
// - Ranking (bootstrap + scheduled): top holders of the configured mint
// - Monitoring (continuous): buy/sell event production for ranked wallets
// - API (continuous): REST endpoints, WebSocket stream, Prometheus metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tokenwise/internal/hub"
	"tokenwise/internal/monitor"
	"tokenwise/internal/orchestrator"
	"tokenwise/internal/ranking"
	"tokenwise/internal/reporting"
	"tokenwise/internal/solana"
	"tokenwise/internal/storage"
	chstore "tokenwise/internal/storage/clickhouse"
	"tokenwise/internal/storage/memory"
	"tokenwise/internal/storage/migrations"
	pgstore "tokenwise/internal/storage/postgres"
)

// DefaultMint is the token tracked when no mint is configured.
const DefaultMint = "9BB6NFEcjBCtnNLFko2FqVQBq8HHM13kCyYcdQbgpump"

// Server holds all components of the service.
type Server struct {
	hub          *hub.Hub
	monitor      *monitor.Monitor
	orchestrator *orchestrator.Orchestrator
	mux          *solana.Multiplexer
	reports      *reporting.Generator

	walletStore storage.WalletStore
	eventStore  storage.EventStore

	mint      string
	limit     int
	logger    *log.Logger
	startedAt time.Time
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoints := flag.String("rpc-endpoints", os.Getenv("SOLANA_RPC_ENDPOINTS"), "Comma-separated Solana RPC HTTP endpoints")
	tokenMint := flag.String("token-mint", envOr("TOKEN_MINT", DefaultMint), "Token mint to track")
	limit := flag.Int("limit", envIntOr("WALLET_LIMIT", ranking.DefaultLimit), "How many top holders to track")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional event archive)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	rerankInterval := flag.Duration("rerank-interval", 10*time.Minute, "Holder reranking interval (0 disables)")
	hubBuffer := flag.Int("hub-buffer", hub.DefaultBuffer, "Per-subscriber broadcast buffer depth")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	endpoints := splitList(*rpcEndpoints)
	if len(endpoints) == 0 {
		logger.Fatal("--rpc-endpoints is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	walletStore, eventStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	mux, err := solana.NewMultiplexer(endpoints, log.New(os.Stdout, "[solana] ", log.LstdFlags))
	if err != nil {
		logger.Fatalf("Failed to create endpoint multiplexer: %v", err)
	}

	engine, err := ranking.NewEngine(ranking.Options{
		Client: mux,
		Mint:   *tokenMint,
		Limit:  *limit,
		Logger: log.New(os.Stdout, "[ranking] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create ranking engine: %v", err)
	}

	broadcast := hub.NewHub(*hubBuffer, log.New(os.Stdout, "[hub] ", log.LstdFlags))

	mon, err := monitor.New(monitor.Options{
		Generator: monitor.NewRandomGenerator(),
		Store:     eventStore,
		Hub:       broadcast,
		Logger:    log.New(os.Stdout, "[monitor] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create monitor: %v", err)
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Engine:         engine,
		WalletStore:    walletStore,
		Monitor:        mon,
		Hub:            broadcast,
		RerankInterval: *rerankInterval,
		Logger:         log.New(os.Stdout, "[orchestrator] ", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to create orchestrator: %v", err)
	}

	server := &Server{
		hub:          broadcast,
		monitor:      mon,
		orchestrator: orch,
		mux:          mux,
		reports:      reporting.NewGenerator(walletStore, eventStore),
		walletStore:  walletStore,
		eventStore:   eventStore,
		mint:         *tokenMint,
		limit:        *limit,
		logger:       logger,
		startedAt:    time.Now(),
	}

	logger.Printf("Tracking mint %s, top %d holders, %d endpoints", *tokenMint, *limit, mux.NumEndpoints())

	if err := orch.Bootstrap(ctx); err != nil {
		logger.Fatalf("Bootstrap failed: %v", err)
	}

	httpServer := &http.Server{
		Addr:    *httpAddr,
		Handler: server.routes(),
	}

	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}

		orch.Shutdown()
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	logger.Printf("Starting HTTP server on %s", *httpAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
	close(done)

	logger.Println("Shutdown complete")
}

// createStores builds the wallet and event stores. With ClickHouse
// configured, events are mirrored into it as an analytics archive.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (storage.WalletStore, storage.EventStore, func(), error) {
	if useMemory {
		return memory.NewWalletStore(), memory.NewEventStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	walletStore := pgstore.NewWalletStore(pool)
	var eventStore storage.EventStore = pgstore.NewEventStore(pool)
	cleanup := func() { pool.Close() }

	if clickhouseDSN != "" {
		chConn, err := chstore.NewConn(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, chConn); err != nil {
			chConn.Close()
			pool.Close()
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}

		eventStore = storage.NewTeeEventStore(eventStore, chstore.NewEventStore(chConn), logger)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return walletStore, eventStore, cleanup, nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envOr returns the env var value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr returns the env var parsed as int, or a fallback.
func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
