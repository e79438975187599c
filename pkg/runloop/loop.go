package runloop

import (
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// DefaultQueueSize is the task buffer size used when no option overrides it.
const DefaultQueueSize = 256

// Loop is a single-goroutine FIFO task executor.
//
// Construct with New, which starts the worker goroutine. Dispatch queues
// a function; the worker runs queued functions strictly in dispatch
// order. Stop shuts the worker down and discards anything still queued.
type Loop struct {
	// tasks are the queued callbacks, drained in FIFO order.
	tasks chan func()

	// done signals shutdown to the worker and to blocked Flush calls.
	done chan struct{}

	// stopped guards against double-close of done.
	stopped atomic.Bool

	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*loopConfig)

type loopConfig struct {
	queueSize int
	logger    *slog.Logger
}

// WithQueueSize sets the task buffer size. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(c *loopConfig) {
		if n >= 1 {
			c.queueSize = n
		}
	}
}

// WithLogger sets the logger used for drop warnings and panic reports.
func WithLogger(logger *slog.Logger) Option {
	return func(c *loopConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Loop and starts its worker goroutine.
func New(opts ...Option) *Loop {
	cfg := &loopConfig{
		queueSize: DefaultQueueSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	l := &Loop{
		tasks:  make(chan func(), cfg.queueSize),
		done:   make(chan struct{}),
		logger: cfg.logger.With("component", "runloop"),
	}
	go l.run()
	return l
}

// run drains the task queue until the loop is stopped.
func (l *Loop) run() {
	for {
		select {
		case fn := <-l.tasks:
			// Re-check after wake: both cases can be ready at once and
			// a stopped loop must not run the task it raced for.
			if l.stopped.Load() {
				return
			}
			l.execute(fn)
		case <-l.done:
			return
		}
	}
}

// execute runs a single task with panic recovery. A panicking task is
// logged and the loop keeps running.
func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(stack))
		}
	}()

	fn()
}

// Dispatch queues fn to run on the loop goroutine. Never blocks: a full
// queue discards fn with a warning, a stopped loop discards it silently.
// A nil fn is ignored.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	if l.stopped.Load() {
		return
	}
	select {
	case l.tasks <- fn:
		// Successfully queued
	case <-l.done:
		// Loop is stopping, discard
	default:
		// Queue full - this shouldn't happen normally, but log it
		l.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Flush blocks until every task dispatched before the call has run.
// Unlike Dispatch, Flush waits for queue space rather than dropping.
// Returns immediately if the loop has stopped.
func (l *Loop) Flush() {
	ch := make(chan struct{})
	select {
	case l.tasks <- func() { close(ch) }:
	case <-l.done:
		return
	}
	select {
	case <-ch:
	case <-l.done:
	}
}

// Stop shuts the worker down. Tasks still queued are discarded; a task
// already executing finishes. Stop is idempotent and safe to call from
// any goroutine, including from a task on the loop itself.
func (l *Loop) Stop() {
	if l.stopped.Swap(true) {
		return
	}
	close(l.done)
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool {
	return l.stopped.Load()
}
