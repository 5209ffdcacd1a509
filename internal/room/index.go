// Package room maintains the membership index for ad hoc broadcast groups.
// Rooms exist only as long as they have members: the first join creates the
// set, removing the last member deletes it.
package room

import (
	"sync"

	"github.com/samber/lo"

	"chatwire/pkg/interfaces"
)

// Index maps room identifiers to their member connections. Each connection
// is in at most one room at a time. All methods are safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	members map[string]map[string]interfaces.Connection // room -> connID -> conn
	current map[string]string                           // connID -> room
}

// NewIndex creates an empty room index.
func NewIndex() *Index {
	return &Index{
		members: make(map[string]map[string]interfaces.Connection),
		current: make(map[string]string),
	}
}

// Join adds conn to room, removing it from any prior room first. It returns
// the prior room (empty if none) and whether membership actually changed.
// Joining the room the connection is already in is a no-op.
func (i *Index) Join(conn interfaces.Connection, room string) (prior string, moved bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	prior = i.current[conn.ID()]
	if prior == room {
		return "", false
	}
	if prior != "" {
		i.removeLocked(conn.ID(), prior)
	}

	if i.members[room] == nil {
		i.members[room] = make(map[string]interfaces.Connection)
	}
	i.members[room][conn.ID()] = conn
	i.current[conn.ID()] = room
	return prior, true
}

// Leave removes the connection from its current room and returns that room.
// No-op for connections without a room.
func (i *Index) Leave(conn interfaces.Connection) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	room, ok := i.current[conn.ID()]
	if !ok {
		return "", false
	}
	i.removeLocked(conn.ID(), room)
	delete(i.current, conn.ID())
	return room, true
}

func (i *Index) removeLocked(connID, room string) {
	if set, ok := i.members[room]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(i.members, room)
		}
	}
}

// MembersOf returns a snapshot of the room's member connections. An unknown
// room yields an empty slice.
func (i *Index) MembersOf(room string) []interfaces.Connection {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return lo.Values(i.members[room])
}

// RoomOf returns the room the given connection is currently in.
func (i *Index) RoomOf(connID string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	room, ok := i.current[connID]
	return room, ok
}

// Count returns the number of rooms with at least one member.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.members)
}
