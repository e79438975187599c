package future

import (
	"context"
	"log/slog"
)

// managerConfig collects construction options before the Manager is built.
type managerConfig struct {
	name          string
	logger        *slog.Logger
	scheduler     Scheduler
	deferNotify   bool
	probe         Probe
	silentFailure SilentFailurePolicy
}

// Option configures a Manager at construction time.
type Option func(*managerConfig)

// WithName sets the manager name used in logs, metrics, and traces.
func WithName(name string) Option {
	return func(c *managerConfig) {
		c.name = name
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithScheduler sets the scheduler used for deferred notification
// delivery. Without one, deferred notifications degrade to synchronous.
func WithScheduler(s Scheduler) Option {
	return func(c *managerConfig) {
		c.scheduler = s
	}
}

// WithDeferredNotify makes deferred delivery the default for every
// notification from this manager, not just the calls that ask for it.
func WithDeferredNotify() Option {
	return func(c *managerConfig) {
		c.deferNotify = true
	}
}

// WithProbe attaches an instrumentation probe.
func WithProbe(p Probe) Option {
	return func(c *managerConfig) {
		c.probe = p
	}
}

// WithSilentFailure sets the policy for failed silent runs.
// Defaults to PreserveData.
func WithSilentFailure(p SilentFailurePolicy) Option {
	return func(c *managerConfig) {
		c.silentFailure = p
	}
}

// runConfig collects per-run options for Execute and Refresh.
// The manager remembers the config of the last Execute so Refresh can
// replay it; options passed to Refresh overlay the remembered values
// for that call only.
type runConfig struct {
	silent  bool
	repanic bool
	onDone  func()
	onError func(error)

	// transform holds a func(context.Context, T) (T, error) type-erased
	// so RunOption stays non-generic. Asserted back in the run path.
	transform any
}

// RunOption configures a single Execute or Refresh call.
type RunOption func(*runConfig)

// Silent keeps the previous result/error visible while the operation
// runs, instead of resetting the manager to loading first. Only the
// process phase changes to running.
func Silent() RunOption {
	return func(c *runConfig) {
		c.silent = true
	}
}

// Repanic re-raises a recovered operation panic after state bookkeeping,
// observer notification, and callbacks have completed. Without it a
// panic is contained and reported through the stored error.
func Repanic() RunOption {
	return func(c *runConfig) {
		c.repanic = true
	}
}

// OnSuccess registers an asynchronous post-transform applied to the
// resolved value before it is stored. Returning an error fails the run
// as if the operation itself had failed.
//
// The type parameter must match the manager's result type; a transform
// of the wrong type is ignored with a warning.
func OnSuccess[T any](fn func(context.Context, T) (T, error)) RunOption {
	return func(c *runConfig) {
		c.transform = fn
	}
}

// OnDone registers a callback that always fires after the run settles,
// success or failure, before Execute returns.
func OnDone(fn func()) RunOption {
	return func(c *runConfig) {
		c.onDone = fn
	}
}

// OnError registers a callback invoked with the failure, regardless of
// whether the visible phase flipped to error.
func OnError(fn func(error)) RunOption {
	return func(c *runConfig) {
		c.onError = fn
	}
}

// stateConfig collects options for direct state mutations.
type stateConfig struct {
	keepView    bool
	deferNotify bool
}

// StateOption configures SetError and Reset calls.
type StateOption func(*stateConfig)

// KeepView leaves the visible phase untouched. For SetError this stores
// a soft error without flipping rendering to the error branch; for Reset
// it clears state without flipping rendering back to loading.
func KeepView() StateOption {
	return func(c *stateConfig) {
		c.keepView = true
	}
}

// DeferNotify delivers this call's observer notification through the
// manager's scheduler instead of synchronously on the calling stack.
func DeferNotify() StateOption {
	return func(c *stateConfig) {
		c.deferNotify = true
	}
}
