package domain

import "errors"

// Error kinds surfaced to the transport. The transport maps these to status
// codes; the core never depends on any particular wire representation.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionComplete = errors.New("session already complete")
	ErrSessionBusy     = errors.New("session busy")
	ErrInvalidInput    = errors.New("invalid input")
)
