// Package app wires the components together and owns startup and shutdown
// ordering.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chatwire/internal/api"
	"chatwire/internal/config"
	"chatwire/internal/history"
	"chatwire/internal/hub"
	"chatwire/internal/lifecycle"
	"chatwire/internal/presence"
	"chatwire/internal/room"
	"chatwire/internal/router"
	"chatwire/internal/websocket"
)

// Application holds every component of the server. Construction order runs
// leaf-first: registries, then router, then hub, then transport and HTTP.
type Application struct {
	config     *config.Config
	lifecycle  *lifecycle.Manager
	presence   *presence.Registry
	rooms      *room.Index
	history    *history.Buffer
	router     *router.Router
	hub        *hub.Hub
	httpServer *http.Server
	log        *slog.Logger
}

// NewApplication builds a fully wired but not yet started server.
func NewApplication(cfg *config.Config, log *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lc := lifecycle.NewManager()
	pr := presence.NewRegistry()
	rooms := room.NewIndex()
	hist := history.NewBuffer()

	rt := router.NewRouter(pr, rooms, hist, lc, cfg.HistoryPageSize, log)
	eventHub := hub.NewHub(rt, cfg.HubQueueSize, log)

	wsHandler := websocket.NewHandler(eventHub, websocket.HandlerConfig{
		SendQueueSize: cfg.SendQueueSize,
		PingInterval:  cfg.PingInterval,
		ReadTimeout:   cfg.WSReadTimeout,
		WriteTimeout:  cfg.WSWriteTimeout,
	}, log)
	apiServer := api.NewServer(lc, pr, rooms, hist, log)

	mux := http.NewServeMux()
	mux.Handle("/health", apiServer)
	mux.Handle("/api/", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)

	httpServer := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     mux,
		ReadTimeout: cfg.HTTPReadTimeout,
		// No WriteTimeout: it would apply to the hijacked WebSocket
		// connections' initial response as well; per-write deadlines are
		// handled inside the transport layer.
	}

	return &Application{
		config:     cfg,
		lifecycle:  lc,
		presence:   pr,
		rooms:      rooms,
		history:    hist,
		router:     rt,
		hub:        eventHub,
		httpServer: httpServer,
		log:        log,
	}, nil
}

// Start brings the hub up first so the transport has somewhere to dispatch,
// then begins accepting connections.
func (a *Application) Start(ctx context.Context) error {
	a.log.Info("starting chatwire", "addr", a.httpServer.Addr)

	if err := a.hub.Start(ctx); err != nil {
		return fmt.Errorf("starting hub: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		_ = a.hub.Stop()
		return err
	case <-time.After(100 * time.Millisecond):
		a.log.Info("chatwire started")
		return nil
	case <-ctx.Done():
		_ = a.hub.Stop()
		return ctx.Err()
	}
}

// Stop shuts down in reverse order: stop accepting connections, then stop
// event processing. In-memory state is discarded with the process.
func (a *Application) Stop(ctx context.Context) error {
	a.log.Info("shutting down chatwire")

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Warn("http shutdown error", "err", err)
	}
	if err := a.hub.Stop(); err != nil && err != hub.ErrNotRunning {
		a.log.Warn("hub shutdown error", "err", err)
	}
	for _, conn := range a.lifecycle.Snapshot() {
		_ = conn.Close()
	}

	a.log.Info("chatwire shutdown complete")
	return nil
}

// Addr returns the configured listen address.
func (a *Application) Addr() string {
	return a.httpServer.Addr
}
