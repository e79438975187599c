package future

import "context"

// Scheduler runs callbacks asynchronously on behalf of a Manager.
// runloop.Loop satisfies this interface. A manager with a scheduler can
// deliver observer notifications on the scheduler goroutine instead of
// the mutating call stack.
type Scheduler interface {
	Dispatch(fn func())
}

// Probe receives instrumentation callbacks from a Manager. Implementations
// live in the telemetry package; Manager itself has no metrics or tracing
// dependencies.
//
// All methods are invoked outside the manager's internal lock, on the
// goroutine performing the mutation.
type Probe interface {
	// OperationStarted is called when Execute or Refresh begins running
	// an operation. mode is "execute" or "refresh". The returned context
	// is passed to the operation, letting probes attach spans; the
	// returned func must be non-nil and is called exactly once when the
	// operation settles, with its error or nil.
	OperationStarted(ctx context.Context, manager, mode string) (context.Context, func(error))

	// PhaseChanged is called after the visible phase changed.
	PhaseChanged(manager string, view ViewState)

	// ErrorStored is called whenever an error is recorded, including
	// errors that do not surface to the visible phase.
	ErrorStored(manager string, err error)
}
