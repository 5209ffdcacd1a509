// Package websocket is the transport collaborator: it owns the gorilla
// connections, the upgrade handshake, and the per-connection read/write
// goroutines. The routing core only ever sees interfaces.Connection.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chatwire/pkg/types"
)

// Connection wraps one gorilla connection behind a single-writer goroutine.
// Send enqueues onto a buffered channel and never blocks: when the queue is
// full the event is dropped and the caller gets ErrSendQueueFull, so one
// slow client cannot stall a broadcast.
type Connection struct {
	id           string
	conn         *websocket.Conn
	sendCh       chan []byte
	writeTimeout time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps an upgraded socket and starts its writer goroutine.
func NewConnection(conn *websocket.Conn, queueSize int, writeTimeout time.Duration) *Connection {
	if queueSize < 1 {
		queueSize = 100
	}
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:           uuid.New().String(),
		conn:         conn,
		sendCh:       make(chan []byte, queueSize),
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}

	go c.writeLoop()
	return c
}

// ID implements interfaces.Connection.
func (c *Connection) ID() string {
	return c.id
}

// Send implements interfaces.Connection.
func (c *Connection) Send(ev types.Event) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.sendCh <- data:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		return ErrSendQueueFull
	}
}

func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// Close implements interfaces.Connection. Safe to call multiple times.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}
