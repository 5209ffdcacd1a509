package types

import (
	"encoding/json"
	"time"
)

// Inbound event kinds (client -> server).
const (
	EventIdentify     = "identify"
	EventMessage      = "message"
	EventTyping       = "typing"
	EventPrivate      = "private-message"
	EventJoinRoom     = "join-room"
	EventRoomMessage  = "room-message"
	EventFetchHistory = "fetch-history"
	EventReact        = "react"
)

// Outbound event kinds (server -> client). The message, typing, and
// private-message kinds appear in both directions.
const (
	EventOnlineUsers    = "online-users"
	EventNotification   = "notification"
	EventHistoryPage    = "history-page"
	EventReactionUpdate = "reaction-update"
	EventAck            = "ack"
)

// Envelope is the wire framing for inbound events. Data stays raw until the
// router knows which payload schema applies.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound envelope. Data is marshaled as-is when the event is
// written to a connection.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Inbound payload schemas. Validation tags are enforced by DecodePayload;
// events that fail validation are dropped without a response.

type IdentifyPayload struct {
	Name string `json:"name" validate:"required"`
}

type MessagePayload struct {
	Body string `json:"body" validate:"required"`
	Ack  bool   `json:"ack,omitempty"`
}

type PrivatePayload struct {
	To   string `json:"to" validate:"required"`
	Body string `json:"body" validate:"required"`
}

type JoinRoomPayload struct {
	Room string `json:"room" validate:"required"`
}

type RoomMessagePayload struct {
	Room string `json:"room" validate:"required"`
	Body string `json:"body" validate:"required"`
	Name string `json:"name,omitempty"`
}

type FetchHistoryPayload struct {
	Offset int `json:"offset" validate:"gte=0"`
}

type ReactPayload struct {
	MessageID string `json:"messageId" validate:"required"`
	Reaction  string `json:"reaction" validate:"required"`
}

// Outbound payload schemas.

type OnlineUsersPayload struct {
	Users []string `json:"users"`
}

type TypingPayload struct {
	Name string `json:"name"`
}

type PrivateMessagePayload struct {
	From      string    `json:"from"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryPagePayload struct {
	Offset   int       `json:"offset"`
	Messages []Message `json:"messages"`
}

type ReactionUpdatePayload struct {
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
}

// AckStatusDelivered is the only acknowledgment status the server emits.
const AckStatusDelivered = "delivered"

type AckPayload struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
