package gateway

import (
	"errors"

	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/chat"
)

// Wire error codes attached to error payloads so clients can branch
// without string matching.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeCapacity     = "CAPACITY_EXCEEDED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
)

const internalErrorMessage = "internal error"

// wireError is an error whose message is safe to send to the peer as-is.
type wireError struct {
	msg  string
	code string
}

func (e *wireError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &wireError{msg: msg, code: CodeValidation}
}

// classify maps a handler error to the message and code that go on the
// wire. Unrecognized errors are masked as "internal error"; the caller
// logs the real one.
func classify(err error) (msg, code string, internal bool) {
	var we *wireError
	if errors.As(err, &we) {
		return we.msg, we.code, false
	}

	switch {
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrMessageTooLong),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidTopic),
		errors.Is(err, domain.ErrInvalidCapacity):
		return err.Error(), CodeValidation, false
	case errors.Is(err, domain.ErrInvalidRoom),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrRoomExists),
		errors.Is(err, domain.ErrRoomPrivate),
		errors.Is(err, chat.ErrNotInRoom):
		return err.Error(), CodeInvalidInput, false
	case errors.Is(err, domain.ErrRoomFull):
		return err.Error(), CodeCapacity, false
	}

	return internalErrorMessage, CodeInternal, true
}
