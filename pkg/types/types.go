package types

import (
	"time"
)

// SystemSender is the sender name used for server-generated chat messages
// such as join and leave announcements.
const SystemSender = "System"

// Notification kinds delivered alongside regular events.
const (
	NotificationMessage = "message"
	NotificationJoin    = "join"
	NotificationLeave   = "leave"
	NotificationPrivate = "private"
)

// Message is a single chat message. The server assigns ID and Timestamp;
// clients never control either. Reaction is the only mutable field and is
// overwritten by every react event that targets the message (last write wins,
// no ownership check).
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Reaction  string    `json:"reaction,omitempty"`
}

// Notification is an ephemeral signal derived from another event. It is
// delivered to its audience and never stored.
type Notification struct {
	Kind      string    `json:"kind"`
	From      string    `json:"from"`
	Timestamp time.Time `json:"timestamp"`
	Room      string    `json:"room,omitempty"`
}
