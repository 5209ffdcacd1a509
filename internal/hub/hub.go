// Package hub serializes all inbound traffic into a single processing loop.
// One goroutine performs every state mutation, which gives each connection
// in-order processing of its own events and keeps the registries free of
// multi-writer races.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"chatwire/internal/router"
	"chatwire/pkg/interfaces"
	"chatwire/pkg/types"
)

// Hub is the event sink between the transport layer and the router. Frames
// are enqueued without blocking; a full queue rejects the frame rather than
// stalling a read pump.
type Hub struct {
	frames      chan *frameContext
	connects    chan interfaces.Connection
	disconnects chan interfaces.Connection
	shutdown    chan struct{}

	router *router.Router
	log    *slog.Logger

	running bool
	mu      sync.RWMutex
}

type frameContext struct {
	conn  interfaces.Connection
	frame []byte
}

// NewHub creates a hub feeding the given router. queueSize bounds the
// inbound frame queue; connect/disconnect queues are sized proportionally.
func NewHub(r *router.Router, queueSize int, log *slog.Logger) *Hub {
	if queueSize < 1 {
		queueSize = 1024
	}
	lifecycleQueue := queueSize / 10
	if lifecycleQueue < 16 {
		lifecycleQueue = 16
	}
	return &Hub{
		frames:      make(chan *frameContext, queueSize),
		connects:    make(chan interfaces.Connection, lifecycleQueue),
		disconnects: make(chan interfaces.Connection, lifecycleQueue),
		shutdown:    make(chan struct{}),
		router:      r,
		log:         log,
	}
}

// Start launches the processing loop. Returns ErrAlreadyRunning on a second
// call.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrAlreadyRunning
	}
	h.running = true
	h.mu.Unlock()

	h.log.Info("hub started")
	go h.run(ctx)
	return nil
}

// Stop shuts the processing loop down. Events already queued may be
// discarded; delivery is best-effort end to end.
func (h *Hub) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return ErrNotRunning
	}
	h.running = false

	select {
	case <-h.shutdown:
	default:
		close(h.shutdown)
	}
	return nil
}

// Connect implements interfaces.EventSink.
func (h *Hub) Connect(conn interfaces.Connection) error {
	if err := h.checkRunning(); err != nil {
		return err
	}
	select {
	case h.connects <- conn:
		return nil
	default:
		return ErrQueueFull
	}
}

// Dispatch implements interfaces.EventSink. Frames from one connection are
// enqueued by its read pump in read order, so the single loop preserves
// per-connection ordering.
func (h *Hub) Dispatch(conn interfaces.Connection, frame []byte) error {
	if err := h.checkRunning(); err != nil {
		return err
	}
	select {
	case h.frames <- &frameContext{conn: conn, frame: frame}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Disconnect implements interfaces.EventSink. Duplicate reports for the same
// connection are harmless; the router's teardown is idempotent.
func (h *Hub) Disconnect(conn interfaces.Connection) error {
	if err := h.checkRunning(); err != nil {
		return err
	}
	select {
	case h.disconnects <- conn:
		return nil
	default:
		return ErrQueueFull
	}
}

func (h *Hub) checkRunning() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.running {
		return ErrNotRunning
	}
	return nil
}

func (h *Hub) run(ctx context.Context) {
	defer h.log.Info("hub stopped")

	for {
		select {
		case fc := <-h.frames:
			h.handleFrame(fc)
		case conn := <-h.connects:
			if err := h.router.Connect(conn); err != nil {
				h.log.Warn("connection registration failed", "err", err)
			}
		case conn := <-h.disconnects:
			h.router.Disconnect(conn)
		case <-h.shutdown:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleFrame(fc *frameContext) {
	var env types.Envelope
	if err := json.Unmarshal(fc.frame, &env); err != nil {
		h.log.Debug("dropping undecodable frame", "conn", fc.conn.ID(), "err", err)
		return
	}
	if env.Event == "" {
		h.log.Debug("dropping frame without event kind", "conn", fc.conn.ID())
		return
	}
	h.router.Route(fc.conn, env)
}
