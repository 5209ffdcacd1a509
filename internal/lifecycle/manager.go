// Package lifecycle tracks the set of live connections and guarantees that
// disconnect teardown runs exactly once per connection, no matter how many
// times the transport reports the close.
package lifecycle

import (
	"sync"

	"chatwire/pkg/interfaces"
)

// Manager is the authoritative set of currently open connections. It serves
// "all connections" audience resolution and gates disconnect side effects
// through the idempotent Remove.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]interfaces.Connection
}

// NewManager creates an empty connection set.
func NewManager() *Manager {
	return &Manager{connections: make(map[string]interfaces.Connection)}
}

// Add registers a newly connected session. Connections start with no name
// and no room; nothing is broadcast until the client identifies.
func (m *Manager) Add(conn interfaces.Connection) error {
	if conn == nil {
		return ErrNilConnection
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.connections[conn.ID()] = conn
	return nil
}

// Remove takes the connection out of the set and reports whether this call
// performed the removal. A second Remove for the same connection returns
// false, which callers use to run teardown side effects exactly once.
func (m *Manager) Remove(conn interfaces.Connection) bool {
	if conn == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	registered, ok := m.connections[conn.ID()]
	if !ok || registered != conn {
		return false
	}
	delete(m.connections, conn.ID())
	return true
}

// Snapshot returns the current connections. Mutations after the snapshot do
// not affect an in-flight iteration; a connection removed mid-broadcast
// simply fails its individual send.
func (m *Manager) Snapshot() []interfaces.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns := make([]interfaces.Connection, 0, len(m.connections))
	for _, conn := range m.connections {
		conns = append(conns, conn)
	}
	return conns
}

// Count returns the number of open connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.connections)
}
