package future

import (
	"errors"
	"fmt"
)

// ErrNoOperation is returned by Refresh when no operation has ever been
// executed on the manager, and by Execute when given a nil operation.
//
// Applications can safely ignore this error when refresh is wired to a
// UI control that may fire before the first load.
var ErrNoOperation = errors.New("future: no operation to run")

// ErrDisposed is returned by Execute and Refresh on a disposed manager.
// All other calls on a disposed manager are silent no-ops.
var ErrDisposed = errors.New("future: manager disposed")

// OpError wraps a failure of the managed operation. It is what a
// manager stores and what observers see through Error.
//
// A returned error is wrapped as-is. A recovered panic is converted to
// an error and carries the stack captured at recovery time.
type OpError struct {
	// Err is the underlying cause.
	Err error

	// Stack is the goroutine stack captured when a panic was recovered.
	// Nil for ordinary returned errors.
	Stack []byte

	// panicValue holds the original panic payload so Repanic can
	// re-raise it unchanged.
	panicValue any
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.panicValue != nil {
		return fmt.Sprintf("operation panicked: %v", e.panicValue)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Panicked reports whether this failure came from a recovered panic.
func (e *OpError) Panicked() bool {
	return e.panicValue != nil
}

// wrapError converts an operation failure into an OpError, passing
// through failures that already are one.
func wrapError(err error) *OpError {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe
	}
	return &OpError{Err: err}
}

// panicError converts a recovered panic value into an OpError.
func panicError(v any, stack []byte) *OpError {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	return &OpError{Err: err, Stack: stack, panicValue: v}
}
