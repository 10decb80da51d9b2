package domain

import "errors"

// ErrInvalidInput covers malformed arguments that are not worth a
// dedicated sentinel.
var ErrInvalidInput = errors.New("invalid input")
