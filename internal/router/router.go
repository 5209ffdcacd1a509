// Package router is the central dispatcher: for every inbound event it
// resolves the target audience (all connections, a room, or a single
// recipient), mutates the presence/room/history state as a side effect, and
// emits the corresponding outbound events. No other component resolves
// audiences.
package router

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"chatwire/internal/history"
	"chatwire/internal/lifecycle"
	"chatwire/internal/presence"
	"chatwire/internal/room"
	"chatwire/pkg/interfaces"
	"chatwire/pkg/types"
)

// Router dispatches inbound events by kind. Callers must serialize calls to
// Route, Connect, and Disconnect (the hub's single loop does this); the
// underlying registries carry their own locks only so that read-side
// consumers such as the stats endpoint observe consistent snapshots.
type Router struct {
	presence  *presence.Registry
	rooms     *room.Index
	history   *history.Buffer
	lifecycle *lifecycle.Manager
	pageSize  int
	log       *slog.Logger
}

// NewRouter creates a router over the shared state registries. pageSize
// bounds history pages; values below 1 fall back to DefaultPageSize.
func NewRouter(pr *presence.Registry, rooms *room.Index, hist *history.Buffer, lc *lifecycle.Manager, pageSize int, log *slog.Logger) *Router {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Router{
		presence:  pr,
		rooms:     rooms,
		history:   hist,
		lifecycle: lc,
		pageSize:  pageSize,
		log:       log,
	}
}

// DefaultPageSize is the history page window used when none is configured.
const DefaultPageSize = 10

// Connect registers a new connection. Nothing is broadcast until the client
// identifies.
func (r *Router) Connect(conn interfaces.Connection) error {
	return r.lifecycle.Add(conn)
}

// Route dispatches one decoded inbound event. Malformed payloads and events
// whose preconditions fail are dropped silently; there is no error event on
// the wire.
func (r *Router) Route(conn interfaces.Connection, env types.Envelope) {
	switch env.Event {
	case types.EventIdentify:
		r.handleIdentify(conn, env)
	case types.EventMessage:
		r.handleMessage(conn, env)
	case types.EventFetchHistory:
		r.handleFetchHistory(conn, env)
	case types.EventPrivate:
		r.handlePrivateMessage(conn, env)
	case types.EventTyping:
		r.handleTyping(conn)
	case types.EventJoinRoom:
		r.handleJoinRoom(conn, env)
	case types.EventRoomMessage:
		r.handleRoomMessage(conn, env)
	case types.EventReact:
		r.handleReact(conn, env)
	default:
		r.log.Debug("dropping unknown event", "event", env.Event, "conn", conn.ID())
	}
}

// handleIdentify binds the display name and announces the updated online set
// plus a system join message. System announcements are broadcast but never
// stored; history holds user messages only.
func (r *Router) handleIdentify(conn interfaces.Connection, env types.Envelope) {
	var p types.IdentifyPayload
	if err := types.DecodePayload(env.Data, &p); err != nil {
		r.dropMalformed(conn, env.Event, err)
		return
	}

	r.presence.Bind(conn, p.Name)
	r.broadcastOnlineUsers()

	joined := r.systemMessage(p.Name + " has joined the chat")
	r.broadcastAll(types.Event{Event: types.EventMessage, Data: joined})

	r.log.Info("user identified", "name", p.Name, "conn", conn.ID())
}

// handleMessage appends a global message to history, echoes it to everyone,
// optionally acknowledges the sender, and emits a derived notification.
func (r *Router) handleMessage(conn interfaces.Connection, env types.Envelope) {
	name, ok := r.presence.NameOf(conn.ID())
	if !ok {
		r.dropUnidentified(conn, env.Event)
		return
	}

	var p types.MessagePayload
	if err := types.DecodePayload(env.Data, &p); err != nil {
		r.dropMalformed(conn, env.Event, err)
		return
	}

	msg := types.Message{
		ID:        uuid.New().String(),
		Sender:    name,
		Body:      p.Body,
		Timestamp: time.Now(),
	}

	// Append before broadcast: a fetch-history racing this event must not
	// miss a message its sender already saw echoed.
	r.history.Append(msg)
	r.broadcastAll(types.Event{Event: types.EventMessage, Data: msg})

	if p.Ack {
		r.send(conn, types.Event{Event: types.EventAck, Data: types.AckPayload{
			Status:    types.AckStatusDelivered,
			Timestamp: time.Now(),
		}})
	}

	r.broadcastAll(types.Event{Event: types.EventNotification, Data: types.Notification{
		Kind:      types.NotificationMessage,
		From:      name,
		Timestamp: msg.Timestamp,
	}})
}

// handleFetchHistory answers with a single page; the sender is the only
// audience.
func (r *Router) handleFetchHistory(conn interfaces.Connection, env types.Envelope) {
	var p types.FetchHistoryPayload
	if err := types.DecodePayload(env.Data, &p); err != nil {
		r.dropMalformed(conn, env.Event, err)
		return
	}

	page := r.history.Page(p.Offset, r.pageSize)
	r.send(conn, types.Event{Event: types.EventHistoryPage, Data: types.HistoryPagePayload{
		Offset:   p.Offset,
		Messages: page,
	}})
}

// handlePrivateMessage delivers to the named recipient only. An offline
// recipient drops the message with no feedback to the sender.
func (r *Router) handlePrivateMessage(conn interfaces.Connection, env types.Envelope) {
	name, ok := r.presence.NameOf(conn.ID())
	if !ok {
		r.dropUnidentified(conn, env.Event)
		return
	}

	var p types.PrivatePayload
	if err := types.DecodePayload(env.Data, &p); err != nil {
		r.dropMalformed(conn, env.Event, err)
		return
	}

	target, online := r.presence.Resolve(p.To)
	if !online {
		r.log.Debug("private message to offline user dropped", "to", p.To, "from", name)
		return
	}

	now := time.Now()
	r.send(target, types.Event{Event: types.EventPrivate, Data: types.PrivateMessagePayload{
		From:      name,
		Body:      p.Body,
		Timestamp: now,
	}})
	r.send(target, types.Event{Event: types.EventNotification, Data: types.Notification{
		Kind:      types.NotificationPrivate,
		From:      name,
		Timestamp: now,
	}})
}

// handleTyping relays a typing indicator to everyone except the sender.
func (r *Router) handleTyping(conn interfaces.Connection) {
	name, ok := r.presence.NameOf(conn.ID())
	if !ok {
		r.dropUnidentified(conn, types.EventTyping)
		return
	}

	ev := types.Event{Event: types.EventTyping, Data: types.TypingPayload{Name: name}}
	for _, c := range r.lifecycle.Snapshot() {
		if c.ID() == conn.ID() {
			continue
		}
		r.send(c, ev)
	}
}

// handleJoinRoom moves the connection into the room. The prior room's
// remaining members get a leave notification; the new room's existing
// members get a join notification and a system message. Neither is stored.
func (r *Router) handleJoinRoom(conn interfaces.Connection, env types.Envelope) {
	var p types.JoinRoomPayload
	if err := types.DecodePayload(env.Data, &p); err != nil {
		r.dropMalformed(conn, env.Event, err)
		return
	}

	name, _ := r.presence.NameOf(conn.ID())
	prior, moved := r.rooms.Join(conn, p.Room)
	if !moved {
		return
	}

	now := time.Now()
	if prior != "" {
		leave := types.Event{Event: types.EventNotification, Data: types.Notification{
			Kind:      types.NotificationLeave,
			From:      name,
			Timestamp: now,
			Room:      prior,
		}}
		for _, m := range r.rooms.MembersOf(prior) {
			r.send(m, leave)
		}
	}

	join := types.Event{Event: types.EventNotification, Data: types.Notification{
		Kind:      types.NotificationJoin,
		From:      name,
		Timestamp: now,
		Room:      p.Room,
	}}
	announce := types.Event{Event: types.EventMessage, Data: r.systemMessage(name + " joined " + p.Room)}
	for _, m := range r.rooms.MembersOf(p.Room) {
		if m.ID() == conn.ID() {
			continue
		}
		r.send(m, join)
		r.send(m, announce)
	}
}

// handleRoomMessage echoes to the room's members, sender included. Messages
// to rooms the sender is not in are dropped; room traffic never reaches
// history.
func (r *Router) handleRoomMessage(conn interfaces.Connection, env types.Envelope) {
	var p types.RoomMessagePayload
	if err := types.DecodePayload(env.Data, &p); err != nil {
		r.dropMalformed(conn, env.Event, err)
		return
	}

	current, ok := r.rooms.RoomOf(conn.ID())
	if !ok || current != p.Room {
		r.log.Debug("room message from non-member dropped", "room", p.Room, "conn", conn.ID())
		return
	}

	sender := p.Name
	if name, identified := r.presence.NameOf(conn.ID()); identified {
		sender = name
	}

	msg := types.Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Body:      p.Body,
		Timestamp: time.Now(),
	}
	ev := types.Event{Event: types.EventMessage, Data: msg}
	for _, m := range r.rooms.MembersOf(p.Room) {
		r.send(m, ev)
	}
}

// handleReact records the reaction when the message is still in history and
// broadcasts the update to everyone either way. Unknown IDs mutate nothing.
func (r *Router) handleReact(conn interfaces.Connection, env types.Envelope) {
	var p types.ReactPayload
	if err := types.DecodePayload(env.Data, &p); err != nil {
		r.dropMalformed(conn, env.Event, err)
		return
	}

	if !r.history.SetReaction(p.MessageID, p.Reaction) {
		r.log.Debug("reaction to unknown message", "messageId", p.MessageID)
	}

	r.broadcastAll(types.Event{Event: types.EventReactionUpdate, Data: types.ReactionUpdatePayload{
		MessageID: p.MessageID,
		Reaction:  p.Reaction,
	}})
}

// Disconnect tears down all state referencing the connection and emits the
// derived notifications. Teardown runs exactly once even when the transport
// reports the close multiple times.
func (r *Router) Disconnect(conn interfaces.Connection) {
	if !r.lifecycle.Remove(conn) {
		return
	}

	name, identified := r.presence.Unbind(conn)
	priorRoom, hadRoom := r.rooms.Leave(conn)

	// Unidentified connections leave no visible trace.
	if !identified {
		return
	}

	r.broadcastOnlineUsers()
	r.broadcastAll(types.Event{
		Event: types.EventMessage,
		Data:  r.systemMessage(name + " has left the chat"),
	})

	if hadRoom {
		leave := types.Event{Event: types.EventNotification, Data: types.Notification{
			Kind:      types.NotificationLeave,
			From:      name,
			Timestamp: time.Now(),
			Room:      priorRoom,
		}}
		for _, m := range r.rooms.MembersOf(priorRoom) {
			r.send(m, leave)
		}
	}

	r.log.Info("user disconnected", "name", name, "conn", conn.ID())
}

func (r *Router) broadcastOnlineUsers() {
	r.broadcastAll(types.Event{Event: types.EventOnlineUsers, Data: types.OnlineUsersPayload{
		Users: r.presence.Snapshot(),
	}})
}

// broadcastAll delivers fire-and-forget to every open connection. A failed
// delivery to one connection never aborts the rest.
func (r *Router) broadcastAll(ev types.Event) {
	for _, c := range r.lifecycle.Snapshot() {
		r.send(c, ev)
	}
}

func (r *Router) send(conn interfaces.Connection, ev types.Event) {
	if err := conn.Send(ev); err != nil {
		r.log.Debug("delivery dropped", "conn", conn.ID(), "event", ev.Event, "err", err)
	}
}

func (r *Router) systemMessage(body string) types.Message {
	return types.Message{
		ID:        uuid.New().String(),
		Sender:    types.SystemSender,
		Body:      body,
		Timestamp: time.Now(),
	}
}

func (r *Router) dropMalformed(conn interfaces.Connection, event string, err error) {
	r.log.Debug("dropping malformed payload", "event", event, "conn", conn.ID(), "err", err)
}

func (r *Router) dropUnidentified(conn interfaces.Connection, event string) {
	r.log.Debug("dropping event from unidentified sender", "event", event, "conn", conn.ID())
}
