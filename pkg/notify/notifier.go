package notify

import (
	"sync"
	"sync/atomic"
)

// Scheduler runs callbacks asynchronously on behalf of a Notifier.
// runloop.Loop satisfies this interface.
type Scheduler interface {
	Dispatch(fn func())
}

// globalSubCounter is the source of unique subscription IDs.
var globalSubCounter uint64

// nextSubID returns the next unique subscription ID.
// IDs are monotonically increasing and never reused.
func nextSubID() uint64 {
	return atomic.AddUint64(&globalSubCounter, 1)
}

// subscription pairs a callback with its unique ID so that cancel
// functions can remove exactly the entry they created.
type subscription struct {
	id uint64
	fn func()
}

// Notifier is an ordered registry of change callbacks.
//
// Callbacks are invoked in subscription order (FIFO). A Notifier is safe
// for concurrent use; delivery itself happens on whichever goroutine
// calls Notify, or on the scheduler for deferred delivery.
//
// The zero value is not usable; construct with New.
type Notifier struct {
	// mu protects subs, closers, and closed.
	mu sync.Mutex

	// subs are the registered callbacks in subscription order.
	subs []subscription

	// closers run when the Notifier is closed. Used by Merge to detach
	// from its sources.
	closers []func()

	// closed marks the Notifier as inert.
	closed bool

	// scheduler delivers deferred notifications. Nil means NotifyDeferred
	// degrades to synchronous delivery.
	scheduler Scheduler
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithScheduler sets the scheduler used by NotifyDeferred.
func WithScheduler(s Scheduler) Option {
	return func(n *Notifier) {
		n.scheduler = s
	}
}

// New creates an empty Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers fn to run on every notification and returns a
// cancel function that removes the registration. Cancel is idempotent.
// A nil fn is ignored and yields a no-op cancel. Subscribing to a closed
// Notifier is a no-op.
func (n *Notifier) Subscribe(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return func() {}
	}

	id := nextSubID()
	n.subs = append(n.subs, subscription{id: id, fn: fn})

	return func() {
		n.unsubscribe(id)
	}
}

// unsubscribe removes the subscription with the given ID.
// Removal shifts the tail down rather than swapping with the last
// element so that delivery order stays FIFO.
func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, sub := range n.subs {
		if sub.id == id {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

// Notify invokes every registered callback in subscription order.
// Uses copy-before-notify so callbacks can subscribe or unsubscribe
// reentrantly; a callback added during a pass is not invoked until the
// next pass, and a callback removed during a pass still runs if it was
// captured in the copy.
func (n *Notifier) Notify() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// NotifyDeferred schedules a notification pass on the scheduler instead
// of running it on the caller's stack. The pass reads the subscriber list
// when it runs, so callbacks removed before delivery do not fire. With no
// scheduler configured this is equivalent to Notify.
func (n *Notifier) NotifyDeferred() {
	n.mu.Lock()
	s := n.scheduler
	closed := n.closed
	n.mu.Unlock()

	if closed {
		return
	}
	if s == nil {
		n.Notify()
		return
	}
	s.Dispatch(n.Notify)
}

// Len returns the current number of subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Close drops all subscriptions and marks the Notifier inert. Subsequent
// Subscribe and Notify calls are no-ops. Close is idempotent.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.subs = nil
	closers := n.closers
	n.closers = nil
	n.mu.Unlock()

	for _, c := range closers {
		c()
	}
}

// onClose registers fn to run when the Notifier is closed.
// Runs fn immediately if the Notifier is already closed.
func (n *Notifier) onClose(fn func()) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		fn()
		return
	}
	n.closers = append(n.closers, fn)
	n.mu.Unlock()
}

// Merge returns a Notifier that fires whenever any source fires.
// Closing the merged Notifier detaches it from all sources; closing a
// source simply stops its contributions.
func Merge(sources ...*Notifier) *Notifier {
	m := New()
	for _, src := range sources {
		if src == nil {
			continue
		}
		cancel := src.Subscribe(m.Notify)
		m.onClose(cancel)
	}
	return m
}
