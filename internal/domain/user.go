package domain

import "errors"

// ErrInvalidStatus carries the exact message relayed to peers when a
// status update is rejected, so the wire contract stays stable.
var ErrInvalidStatus = errors.New("Invalid status")

type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusBusy    Status = "busy"
	StatusOffline Status = "offline"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return true
	}
	return false
}

// ParseStatus validates a raw status string from a client.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
