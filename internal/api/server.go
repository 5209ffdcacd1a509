// Package api exposes the read-only HTTP surface next to the WebSocket
// endpoint: liveness and a stats snapshot of the in-memory registries.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"chatwire/internal/history"
	"chatwire/internal/lifecycle"
	"chatwire/internal/presence"
	"chatwire/internal/room"
)

// Server handles the non-WebSocket HTTP routes. No business logic lives
// here, only JSON serialization over registry snapshots.
type Server struct {
	lifecycle *lifecycle.Manager
	presence  *presence.Registry
	rooms     *room.Index
	history   *history.Buffer
	mux       *http.ServeMux
	log       *slog.Logger
}

// Stats is the payload of GET /api/stats.
type Stats struct {
	Connections   int `json:"connections"`
	OnlineUsers   int `json:"online_users"`
	ActiveRooms   int `json:"active_rooms"`
	HistoryLength int `json:"history_length"`
}

// NewServer wires the stats routes over the shared registries.
func NewServer(lc *lifecycle.Manager, pr *presence.Registry, rooms *room.Index, hist *history.Buffer, log *slog.Logger) *Server {
	s := &Server{
		lifecycle: lc,
		presence:  pr,
		rooms:     rooms,
		history:   hist,
		mux:       http.NewServeMux(),
		log:       log,
	}
	s.mux.Handle("/health", s.corsMiddleware(http.HandlerFunc(s.handleHealth)))
	s.mux.Handle("/api/stats", s.corsMiddleware(http.HandlerFunc(s.handleStats)))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.sendJSON(w, http.StatusOK, Stats{
		Connections:   s.lifecycle.Count(),
		OnlineUsers:   s.presence.Count(),
		ActiveRooms:   s.rooms.Count(),
		HistoryLength: s.history.Len(),
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("response encoding failed", "err", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, msg string, status int) {
	s.sendJSON(w, status, map[string]string{"error": msg})
}
