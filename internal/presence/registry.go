// Package presence tracks which display names are online and which
// connection currently holds each name.
package presence

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"chatwire/pkg/interfaces"
)

// Registry maps display names to connections. A name belongs to exactly one
// connection at a time; binding an already-taken name silently evicts the
// previous holder. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]interfaces.Connection
	nameByID map[string]string
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]interfaces.Connection),
		nameByID: make(map[string]string),
	}
}

// Bind registers name -> conn. Any previous binding of the same name is
// overwritten without error, and the evicted connection becomes unidentified.
// A connection re-identifying under a new name releases its old one.
func (r *Registry) Bind(conn interfaces.Connection, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prevName, ok := r.nameByID[conn.ID()]; ok && prevName != name {
		delete(r.byName, prevName)
	}
	if prevConn, ok := r.byName[name]; ok && prevConn.ID() != conn.ID() {
		delete(r.nameByID, prevConn.ID())
	}

	r.byName[name] = conn
	r.nameByID[conn.ID()] = name
}

// Unbind removes the connection's name binding and returns the released
// name. No-op for connections that never identified.
func (r *Registry) Unbind(conn interfaces.Connection) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.nameByID[conn.ID()]
	if !ok {
		return "", false
	}

	// Only release the name if this connection still holds it. A newer
	// connection may have taken the name over in the meantime.
	if holder, bound := r.byName[name]; bound && holder.ID() == conn.ID() {
		delete(r.byName, name)
	}
	delete(r.nameByID, conn.ID())
	return name, true
}

// Resolve returns the connection currently bound to name. Used for
// private-message targeting; a missing name means the recipient is offline.
func (r *Registry) Resolve(name string) (interfaces.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.byName[name]
	return conn, ok
}

// NameOf returns the display name bound to the given connection ID.
func (r *Registry) NameOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.nameByID[connID]
	return name, ok
}

// Snapshot returns the currently online names. The result is sorted so that
// repeated snapshots of the same state compare equal; clients treat the set
// as unordered.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.byName)
	sort.Strings(names)
	return names
}

// Count returns the number of online names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byName)
}
