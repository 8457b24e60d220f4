package dispatch

import (
	"fmt"
	"runtime/debug"
)

// doSafe runs f and converts a panic into an ErrPanic error.
func doSafe(f func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &panicError{value: v, stack: debug.Stack()}
		}
	}()

	return f()
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func (e *panicError) Unwrap() error { return ErrPanic }
