package hub

import "errors"

var (
	ErrAlreadyRunning = errors.New("hub is already running")
	ErrNotRunning     = errors.New("hub is not running")
	ErrQueueFull      = errors.New("hub queue is full")
)
