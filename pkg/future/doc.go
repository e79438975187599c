// Package future provides Manager, an observable state machine around a
// single asynchronous operation.
//
// A Manager owns the outcome of one async fetch: the result value, the
// stored error, and two lifecycle phases. The visible phase (ViewState)
// is what a renderer should show: loading, ready, or error. The process
// phase (ProcessState) additionally distinguishes a refresh in progress
// from an initial load. Observers subscribe to the manager and are
// notified on every state change.
//
//	users := future.New[[]User](future.WithName("users"))
//	cancel := users.Subscribe(rerender)
//	defer cancel()
//
//	data, err := users.Execute(ctx, func(ctx context.Context) ([]User, error) {
//	    return api.ListUsers(ctx)
//	})
//
// # Silent refresh
//
// By default Execute resets the manager to loading before running, which
// discards the previous result. Passing Silent keeps the previous
// result/error visible while the operation runs; only the process phase
// changes. A failed silent run records the error for inspection without
// flipping the visible phase, so a still-valid result keeps rendering:
//
//	users.Execute(ctx, fetchPage, future.Silent())
//
// Whether a failed silent run may clobber the previous result is
// configurable per manager via WithSilentFailure.
//
// # Errors and panics
//
// Execute returns the operation's error to the caller and stores it
// wrapped in an OpError. A panic inside the operation is recovered,
// stored as an OpError carrying the captured stack, and contained;
// the Repanic option re-raises it after bookkeeping.
//
// # Ownership
//
// Managers are explicitly constructed and explicitly owned; the package
// keeps no global instances. Internal state is mutex-protected so any
// goroutine may observe it, but overlapping Execute/Refresh calls are
// deliberately not serialized: the last writer wins. Callers that must
// prevent overlap run all mutations on one runloop.Loop. Configuring
// that loop as the manager's scheduler also moves observer notification
// onto it (WithScheduler plus WithDeferredNotify, or DeferNotify per
// call on SetError/Reset).
package future
