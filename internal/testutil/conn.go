// Package testutil provides in-memory fakes shared by the package tests.
package testutil

import (
	"errors"
	"sync"

	"chatwire/pkg/types"
)

// RecordingConn implements interfaces.Connection and records every event it
// receives. FailSends switches it into a connection whose deliveries all
// fail, for exercising best-effort fan-out.
type RecordingConn struct {
	ConnID string

	mu        sync.Mutex
	events    []types.Event
	failSends bool
	closed    bool
}

// NewRecordingConn creates a fake connection with the given ID.
func NewRecordingConn(id string) *RecordingConn {
	return &RecordingConn{ConnID: id}
}

func (c *RecordingConn) ID() string { return c.ConnID }

func (c *RecordingConn) Send(ev types.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSends || c.closed {
		return errors.New("send failed")
	}
	c.events = append(c.events, ev)
	return nil
}

func (c *RecordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// FailSends makes every subsequent Send return an error.
func (c *RecordingConn) FailSends() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSends = true
}

// Closed reports whether Close was called.
func (c *RecordingConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Events returns a snapshot of everything delivered so far.
func (c *RecordingConn) Events() []types.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Event, len(c.events))
	copy(out, c.events)
	return out
}

// EventsOfKind returns the delivered events with the given kind, in order.
func (c *RecordingConn) EventsOfKind(kind string) []types.Event {
	var out []types.Event
	for _, ev := range c.Events() {
		if ev.Event == kind {
			out = append(out, ev)
		}
	}
	return out
}

// LastOfKind returns the most recent event of the given kind.
func (c *RecordingConn) LastOfKind(kind string) (types.Event, bool) {
	events := c.EventsOfKind(kind)
	if len(events) == 0 {
		return types.Event{}, false
	}
	return events[len(events)-1], true
}

// Reset clears the recorded events.
func (c *RecordingConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}
