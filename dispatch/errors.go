package dispatch

import "errors"

// Failure kinds. Each is answered with a failure response.
var (
	ErrInit   = errors.New("dispatch: module initialization failed")
	ErrEntry  = errors.New("dispatch: entry point failed")
	ErrPanic  = errors.New("dispatch: entry point panicked")
	ErrDecode = errors.New("dispatch: undecodable entry point output")
)

// ErrAbandoned is returned when the request was cancelled before a response
// was produced. Nothing must be written back for it.
var ErrAbandoned = errors.New("dispatch: request abandoned")

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrInit):
		return "init"
	case errors.Is(err, ErrEntry):
		return "entry"
	case errors.Is(err, ErrPanic):
		return "panic"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "unknown"
	}
}
