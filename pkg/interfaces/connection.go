// Package interfaces defines the contracts shared between the transport
// layer and the routing core. The core never touches gorilla/websocket
// directly; it only sees these interfaces.
package interfaces

import (
	"chatwire/pkg/types"
)

// Connection is one live client session. The transport layer owns the
// underlying socket; the core holds only this handle. IDs are stable for the
// lifetime of the session and unique across all sessions in the process.
//
// Send enqueues an event for best-effort delivery. It must never block: a
// slow or disconnected recipient returns an error instead of stalling the
// caller, and the event is dropped.
type Connection interface {
	ID() string
	Send(event types.Event) error
	Close() error
}

// EventSink receives transport signals. The hub implements it; the
// WebSocket handler depends on it so the transport package never imports the
// routing core.
type EventSink interface {
	// Connect registers a newly accepted connection.
	Connect(conn Connection) error
	// Dispatch hands one raw inbound frame to the routing core. Frames from
	// a single connection must be dispatched in read order.
	Dispatch(conn Connection, frame []byte) error
	// Disconnect reports that the transport observed the connection close.
	// Safe to call more than once for the same connection.
	Disconnect(conn Connection) error
}
