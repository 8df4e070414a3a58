// Package web provides an HTTP status server for the reaction arcade.
package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/reaction-arcade/internal/leaderboard"
	"github.com/sweeney/reaction-arcade/internal/status"
)

// DefaultLiveInterval is the /live push cadence.
const DefaultLiveInterval = time.Second

// Server serves the status page over HTTP.
type Server struct {
	httpServer   *http.Server
	tracker      *status.Tracker
	board        leaderboard.Store
	liveInterval time.Duration
}

// New creates a Server that reads state from the given tracker. board and
// gatherer may be nil, which disables /leaderboard.json and /metrics.
func New(addr string, tracker *status.Tracker, board leaderboard.Store, gatherer prometheus.Gatherer) *Server {
	s := &Server{tracker: tracker, board: board, liveInterval: DefaultLiveInterval}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/live", s.handleLive)
	if board != nil {
		mux.HandleFunc("/leaderboard.json", s.handleLeaderboard)
	}
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	var fast []leaderboard.Record
	if s.board != nil {
		records, err := s.board.Load()
		if err != nil {
			log.Printf("http: load leaderboard: %v", err)
		}
		fast = leaderboard.FastBoard(records, 5)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, fast)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	records, err := s.board.Load()
	if err != nil {
		log.Printf("http: load leaderboard: %v", err)
		http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatLeaderboard(records, 5))
}
