package errors

import "errors"

// ErrorWithStatusCode carries an HTTP status alongside the message. Handlers
// treat any other error as an internal one.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// ErrPayloadTooLarge is returned when the backend rejects a submission with 413.
// It is kept distinct from the client-side size gate because the server's limit
// can be stricter than ours.
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrBackendUnavailable is returned when the backend cannot be reached at all.
var ErrBackendUnavailable = errors.New("backend unavailable")
