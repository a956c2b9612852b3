// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/okian/ben/internal/adapters/http/site"
	"github.com/okian/ben/internal/domain/types"
	"github.com/okian/ben/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit validates and counts a guess and returns its canonical form.
	Submit(ctx context.Context, raw, clientIP string) (string, error)

	// Leaderboard returns every guess ranked, with totals.
	Leaderboard(ctx context.Context) (types.Leaderboard, error)

	// Health performs a trivial storage read.
	Health(ctx context.Context) error
}

// Server wires HTTP routes for the game.
type Server struct {
	gameHandler        *GameHandler
	leaderboardHandler *LeaderboardHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	metricsHandler     http.Handler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, pages *site.Pages, opts ...Option) *Server {
	cfg := options{logger: logger.Get().Named("http")}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		gameHandler:        NewGameHandler(deps, pages, cfg),
		leaderboardHandler: NewLeaderboardHandler(deps),
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		metricsHandler:     NewMetricsHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/", MetricsMiddleware(s.gameHandler.HandleIndex, "index"))
	mux.HandleFunc("/submit", MetricsMiddleware(s.gameHandler.HandleSubmit, "submit"))
	mux.HandleFunc("/results", MetricsMiddleware(s.gameHandler.HandleResults, "results"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/health", MetricsMiddleware(s.healthHandler.HandleHealth, "health"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.Handle("/metrics", s.metricsHandler)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// clientIP returns the first X-Forwarded-For entry when proxies are trusted,
// else the host part of RemoteAddr, else "unknown".
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
