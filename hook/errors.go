package hook

import (
	"errors"
	"fmt"

	"github.com/go-lynx/xhook/host"
)

var (
	// ErrTargetNotFound is returned when a hook is registered on a member the host cannot resolve.
	ErrTargetNotFound = errors.New("hook target not found")

	// ErrNilCallback is returned when registering a nil callback.
	ErrNilCallback = errors.New("nil hook callback")

	// ErrCallbackPanic marks a fault produced by a panicking callback.
	ErrCallbackPanic = errors.New("hook callback panicked")
)

// Stages reported by CallbackError.
const (
	StageBefore = "before"
	StageAfter  = "after"
)

// CallbackError describes a callback that panicked during dispatch.
type CallbackError struct {
	Point    host.Member
	Stage    string
	Priority int
	Value    any
	Stack    []byte
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s hook (priority %d) on %s panicked: %v", e.Stage, e.Priority, e.Point, e.Value)
}

// Unwrap returns ErrCallbackPanic, or the panic value when it is itself an error.
func (e *CallbackError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrCallbackPanic, err}
	}
	return []error{ErrCallbackPanic}
}
