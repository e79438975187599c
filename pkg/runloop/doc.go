// Package runloop provides a single-goroutine FIFO task executor, the
// "event loop" that loadable managers and notifiers schedule work onto.
//
// A Loop owns one goroutine that drains a buffered queue of functions in
// dispatch order. Handing all mutations of a manager to one Loop is how
// callers get the single-owner execution model: everything that touches
// the manager runs serialized, and deferred notifications arrive on the
// same goroutine as the mutations.
//
//	loop := runloop.New()
//	defer loop.Stop()
//
//	loop.Dispatch(func() {
//	    mgr.Execute(ctx, fetchUsers)
//	})
//
// Dispatch never blocks: when the queue is full or the loop has stopped,
// the callback is discarded. Flush blocks until every
// previously dispatched task has run, which is the synchronization point
// tests use for deferred notification delivery.
package runloop
