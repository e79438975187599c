// Package loadable provides the public API for the loadable async state
// library.
//
// This is the recommended import for most applications:
//
//	import "github.com/loadable-dev/loadable"
//
// Usage:
//
//	users := loadable.New[[]User](loadable.WithName("users"))
//	unsub := users.Subscribe(render)
//	data, err := users.Execute(ctx, fetchUsers)
//
// The integration surfaces live in subpackages: live exposes managers
// over HTTP and WebSocket, telemetry adds Prometheus and OpenTelemetry
// probes, runloop provides the single-goroutine scheduler.
package loadable

import (
	"context"

	"github.com/loadable-dev/loadable/pkg/future"
	"github.com/loadable-dev/loadable/pkg/notify"
	"github.com/loadable-dev/loadable/pkg/runloop"
)

// =============================================================================
// Manager (re-export from pkg/future)
// =============================================================================

// Manager holds one asynchronously loaded value and its lifecycle phase.
type Manager[T any] = future.Manager[T]

// Operation produces the value a Manager holds.
type Operation[T any] = future.Operation[T]

// Snapshot is a consistent view of a manager's phase, data, and error.
type Snapshot[T any] = future.Snapshot[T]

// New creates an idle Manager.
//
// Example:
//
//	profile := loadable.New[Profile](
//	    loadable.WithName("profile"),
//	    loadable.WithLogger(logger),
//	)
func New[T any](opts ...Option) *Manager[T] {
	return future.New[T](opts...)
}

// Start creates a Manager and immediately runs op on a new goroutine.
// The manager is returned in the loading phase; subscribers hear about
// the result when the operation settles.
func Start[T any](ctx context.Context, op Operation[T], opts ...Option) *Manager[T] {
	return future.Start(ctx, op, opts...)
}

// Match folds the manager's visible phase into a single value, calling
// exactly one of the three callbacks.
//
// Example:
//
//	body := loadable.Match(users,
//	    func() string { return "loading..." },
//	    func(err error) string { return err.Error() },
//	    func(u []User) string { return fmt.Sprintf("%d users", len(u)) },
//	)
func Match[T, R any](m *Manager[T], onLoading func() R, onError func(error) R, onReady func(T) R) R {
	return future.Match(m, onLoading, onError, onReady)
}

// =============================================================================
// Phases (re-export from pkg/future)
// =============================================================================

// ViewState is the phase a consumer should render.
type ViewState = future.ViewState

const (
	ViewLoading = future.ViewLoading
	ViewReady   = future.ViewReady
	ViewError   = future.ViewError
)

// ProcessState is the phase of the most recent operation.
type ProcessState = future.ProcessState

const (
	ProcessIdle    = future.ProcessIdle
	ProcessRunning = future.ProcessRunning
	ProcessReady   = future.ProcessReady
	ProcessError   = future.ProcessError
)

// SilentFailurePolicy decides what a failed silent run does to a
// previously stored result.
type SilentFailurePolicy = future.SilentFailurePolicy

const (
	PreserveData = future.PreserveData
	DropData     = future.DropData
)

// =============================================================================
// Options (re-export from pkg/future)
// =============================================================================

// Option configures a Manager at construction time.
type Option = future.Option

var (
	// WithName sets the manager name used in logs and instrumentation.
	WithName = future.WithName

	// WithLogger sets the structured logger for lifecycle events.
	WithLogger = future.WithLogger

	// WithScheduler routes observer notifications through a scheduler
	// such as a runloop.Loop.
	WithScheduler = future.WithScheduler

	// WithDeferredNotify makes notifications default to scheduler
	// delivery instead of running on the mutating call stack.
	WithDeferredNotify = future.WithDeferredNotify

	// WithProbe attaches an instrumentation probe, e.g.
	// telemetry.NewMetrics().
	WithProbe = future.WithProbe

	// WithSilentFailure sets the policy for failed silent runs.
	WithSilentFailure = future.WithSilentFailure
)

// RunOption configures a single Execute or Refresh call.
type RunOption = future.RunOption

var (
	// Silent keeps the current visible phase while the operation runs.
	Silent = future.Silent

	// Repanic rethrows operation panics after recording them.
	Repanic = future.Repanic

	// OnDone runs after the operation settles, success or failure.
	OnDone = future.OnDone

	// OnError runs with the operation error before it is stored.
	OnError = future.OnError
)

// OnSuccess transforms the operation result before it is stored.
func OnSuccess[T any](fn func(context.Context, T) (T, error)) RunOption {
	return future.OnSuccess(fn)
}

// StateOption configures a direct state mutation such as SetError or
// Reset.
type StateOption = future.StateOption

var (
	// KeepView applies the mutation without changing the visible phase.
	KeepView = future.KeepView

	// DeferNotify hands the notification to the scheduler.
	DeferNotify = future.DeferNotify
)

// =============================================================================
// Errors (re-export from pkg/future)
// =============================================================================

// OpError wraps an operation failure with its captured stack.
type OpError = future.OpError

var (
	ErrNoOperation = future.ErrNoOperation
	ErrDisposed    = future.ErrDisposed
)

// =============================================================================
// Instrumentation (re-export from pkg/future)
// =============================================================================

// Probe receives instrumentation callbacks from a Manager.
type Probe = future.Probe

// Scheduler runs callbacks asynchronously on behalf of a Manager.
type Scheduler = future.Scheduler

// =============================================================================
// Notification plumbing (re-export from pkg/notify and pkg/runloop)
// =============================================================================

// Notifier is the subscription fan-out a Manager publishes through.
type Notifier = notify.Notifier

// Loop is a single-goroutine FIFO task executor satisfying Scheduler.
type Loop = runloop.Loop

// LoopOption configures a Loop.
type LoopOption = runloop.Option

// WithQueueSize sets the loop's task buffer size.
var WithQueueSize = runloop.WithQueueSize

// NewLoop starts a Loop. Stop it when done:
//
//	loop := loadable.NewLoop()
//	defer loop.Stop()
//
//	m := loadable.New[int](loadable.WithScheduler(loop), loadable.WithDeferredNotify())
func NewLoop(opts ...LoopOption) *Loop {
	return runloop.New(opts...)
}
