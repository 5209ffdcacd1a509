package websocket

import "errors"

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("send queue full")
	ErrInvalidJSON      = errors.New("event not marshalable to JSON")
)
