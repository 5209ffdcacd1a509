package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chatwire/pkg/interfaces"
)

var upgrader = websocket.Upgrader{
	// The core does no origin policing; deployments that need it put a
	// reverse proxy in front.
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: 10 * time.Second,
}

// HandlerConfig carries the transport tuning knobs.
type HandlerConfig struct {
	SendQueueSize int
	PingInterval  time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// Handler upgrades HTTP requests and pumps frames into the event sink.
// Connections start unidentified; nothing is announced until the client
// sends an identify event.
type Handler struct {
	sink interfaces.EventSink
	cfg  HandlerConfig
	log  *slog.Logger
}

// NewHandler creates a WebSocket handler feeding the given sink.
func NewHandler(sink interfaces.EventSink, cfg HandlerConfig, log *slog.Logger) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	return &Handler{sink: sink, cfg: cfg, log: log}
}

// HandleWebSocket upgrades the request and hands the connection to the core.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	conn := NewConnection(ws, h.cfg.SendQueueSize, h.cfg.WriteTimeout)
	if err := h.sink.Connect(conn); err != nil {
		h.log.Warn("connection rejected", "conn", conn.ID(), "err", err)
		_ = conn.Close()
		return
	}

	h.log.Info("connection opened", "conn", conn.ID(), "remote", r.RemoteAddr)
	go h.readPump(conn, ws)
}

// readPump reads frames until the socket dies, then reports the disconnect.
// The deferred Disconnect is the transport-driven close signal; the router's
// teardown is idempotent so duplicate reports are harmless.
func (h *Handler) readPump(conn *Connection, ws *websocket.Conn) {
	defer func() {
		if err := h.sink.Disconnect(conn); err != nil {
			h.log.Debug("disconnect report failed", "conn", conn.ID(), "err", err)
		}
		_ = conn.Close()
		h.log.Info("connection closed", "conn", conn.ID())
	}()

	if err := ws.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout)); err != nil {
		return
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	// Heartbeat pings keep NATed clients alive and detect dead peers via
	// the read deadline.
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("read error", "conn", conn.ID(), "err", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := h.sink.Dispatch(conn, data); err != nil {
			h.log.Debug("frame dropped", "conn", conn.ID(), "err", err)
		}
	}
}
