package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"tokenwise/internal/domain"
	"tokenwise/internal/hub"
	"tokenwise/internal/observability"
	"tokenwise/internal/reporting"
)

// API limits and defaults.
const (
	defaultEventLimit  = 50
	maxEventLimit      = 500
	defaultWindowHours = 6
	maxWindowHours     = 24 * 7
)

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/wallets", s.handleWallets)
	mux.HandleFunc("GET /api/wallets/{address}/activity", s.handleWalletActivity)
	mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/transactions/historical", s.handleHistorical)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/json", s.handleExportJSON)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("POST /api/rerank", s.handleRerank)
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	return mux
}

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// queryInt parses an integer query parameter with bounds.
func queryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// handleWallets returns the current ranking.
func (s *Server) handleWallets(w http.ResponseWriter, r *http.Request) {
	rank := s.orchestrator.CurrentRanking()
	if rank == nil {
		// Before the first cycle completes, serve what storage has.
		wallets, err := s.walletStore.TopWallets(r.Context(), s.limit)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "wallet lookup failed")
			return
		}
		rank = &domain.Ranking{Wallets: wallets}
	}
	s.writeJSON(w, rank)
}

// handleWalletActivity returns one wallet's events inside a trailing
// window.
func (s *Server) handleWalletActivity(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		s.writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	hours := queryInt(r, "hours", defaultWindowHours, maxWindowHours)

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	events, err := s.eventStore.EventsForWallet(r.Context(), address, cutoff)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "event lookup failed")
		return
	}
	if events == nil {
		events = []*domain.TransactionEvent{}
	}
	s.writeJSON(w, events)
}

// handleTransactions returns the most recent events.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultEventLimit, maxEventLimit)

	events, err := s.eventStore.RecentEvents(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "event lookup failed")
		return
	}
	if events == nil {
		events = []*domain.TransactionEvent{}
	}
	s.writeJSON(w, events)
}

// handleHistorical returns all events inside a trailing window.
func (s *Server) handleHistorical(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", defaultWindowHours, maxWindowHours)

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	events, err := s.eventStore.EventsSince(r.Context(), cutoff)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "event lookup failed")
		return
	}
	if events == nil {
		events = []*domain.TransactionEvent{}
	}
	s.writeJSON(w, events)
}

// handleExportCSV downloads events inside a trailing window as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", defaultWindowHours, maxWindowHours)

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	events, err := s.eventStore.EventsSince(r.Context(), cutoff)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "event lookup failed")
		return
	}

	body, err := reporting.RenderCSV(events)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.Write([]byte(body))
}

// handleExportJSON downloads events inside a trailing window as JSON.
func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", defaultWindowHours, maxWindowHours)

	cutoff := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	events, err := s.eventStore.EventsSince(r.Context(), cutoff)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "event lookup failed")
		return
	}
	if events == nil {
		events = []*domain.TransactionEvent{}
	}

	body, err := reporting.RenderJSON(events)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.json"`)
	w.Write([]byte(body))
}

// handleReport renders the Markdown activity report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", defaultWindowHours, maxWindowHours)

	report, err := s.reports.Generate(r.Context(), s.limit, time.Duration(hours)*time.Hour)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "report generation failed")
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(reporting.RenderMarkdown(report)))
}

// handleRerank triggers an on-demand ranking cycle.
func (s *Server) handleRerank(w http.ResponseWriter, r *http.Request) {
	if err := s.orchestrator.Rerank(r.Context()); err != nil {
		s.writeError(w, http.StatusInternalServerError, "rerank failed")
		return
	}
	s.writeJSON(w, s.orchestrator.CurrentRanking())
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status           string    `json:"status"`
	Uptime           string    `json:"uptime"`
	StartedAt        time.Time `json:"started_at"`
	Mint             string    `json:"mint"`
	MonitorState     string    `json:"monitor_state"`
	MonitoredWallets int       `json:"monitored_wallets"`
	Generation       uint64    `json:"generation"`
	Placeholder      bool      `json:"placeholder"`
	Subscribers      int       `json:"subscribers"`
	Endpoints        int       `json:"endpoints"`
	ActiveEndpoint   int       `json:"active_endpoint"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:           "running",
		Uptime:           time.Since(s.startedAt).String(),
		StartedAt:        s.startedAt,
		Mint:             s.mint,
		MonitorState:     s.monitor.State().String(),
		MonitoredWallets: len(s.monitor.MonitoredWallets()),
		Subscribers:      s.hub.NumSubscribers(),
		Endpoints:        s.mux.NumEndpoints(),
		ActiveEndpoint:   s.mux.ActiveIndex(),
	}
	if rank := s.orchestrator.CurrentRanking(); rank != nil {
		resp.Generation = rank.Generation
		resp.Placeholder = rank.Placeholder
	}
	s.writeJSON(w, resp)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWS streams hub messages over a WebSocket. The current ranking is
// sent first so a fresh client has a full picture before the deltas.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	if rank := s.orchestrator.CurrentRanking(); rank != nil {
		if err := conn.WriteJSON(hub.WalletsMessage(rank)); err != nil {
			return
		}
	}

	// Reader loop only watches for the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-sub:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
