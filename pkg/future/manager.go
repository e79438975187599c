package future

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/loadable-dev/loadable/pkg/notify"
)

// Operation is the asynchronous work a Manager runs: a fetch, a
// mutation, anything producing one value or one error.
type Operation[T any] func(ctx context.Context) (T, error)

// Manager holds the outcome of one asynchronous operation and notifies
// observers on every state change.
//
// A Manager starts empty: ViewLoading, ProcessIdle, no result, no error.
// State is mutated exclusively through its own methods. Dispose makes
// the manager inert; later mutating calls are no-ops that fire no
// notifications.
type Manager[T any] struct {
	// mu protects the state fields and the remembered operation.
	mu      sync.Mutex
	data    T
	hasData bool
	err     *OpError
	view    ViewState
	process ProcessState

	// op and lastRun are what Refresh replays.
	op      Operation[T]
	lastRun runConfig

	// disposed marks the manager inert.
	disposed atomic.Bool

	notifier      *notify.Notifier
	name          string
	logger        *slog.Logger
	deferNotify   bool
	probe         Probe
	silentFailure SilentFailurePolicy
}

// New creates an empty Manager.
func New[T any](opts ...Option) *Manager[T] {
	cfg := managerConfig{
		logger:        slog.Default(),
		silentFailure: PreserveData,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := cfg.logger.With("component", "future")
	if cfg.name != "" {
		logger = logger.With("manager", cfg.name)
	}

	var notifierOpts []notify.Option
	if cfg.scheduler != nil {
		notifierOpts = append(notifierOpts, notify.WithScheduler(cfg.scheduler))
	}

	return &Manager[T]{
		view:          ViewLoading,
		process:       ProcessIdle,
		notifier:      notify.New(notifierOpts...),
		name:          cfg.name,
		logger:        logger,
		deferNotify:   cfg.deferNotify,
		probe:         cfg.probe,
		silentFailure: cfg.silentFailure,
	}
}

// Name returns the manager name set with WithName.
func (m *Manager[T]) Name() string {
	return m.name
}

// Subscribe registers fn to run on every state change and returns a
// cancel function. Delegates to the manager's notifier; see
// notify.Notifier.Subscribe for reentrancy and ordering guarantees.
func (m *Manager[T]) Subscribe(fn func()) func() {
	return m.notifier.Subscribe(fn)
}

// Notifier exposes the manager's change notifier for composition, such
// as notify.Merge across several managers.
func (m *Manager[T]) Notifier() *notify.Notifier {
	return m.notifier
}

// =============================================================================
// Running operations
// =============================================================================

// Execute runs op and stores its outcome.
//
// By default the manager resets to loading first, discarding any
// previous result or error. With the Silent option the previous state
// stays visible while the operation runs and only the process phase
// changes; see WithSilentFailure for what a failed silent run does.
//
// Execute blocks until the operation settles and always returns its
// error to the caller, stored-state bookkeeping aside. A panic inside
// op is recovered, stored as an OpError with the captured stack, and
// contained unless the Repanic option was given.
//
// The operation and options are remembered for Refresh.
func (m *Manager[T]) Execute(ctx context.Context, op Operation[T], opts ...RunOption) (T, error) {
	if op == nil {
		m.logger.Warn("execute called with nil operation")
		return *new(T), ErrNoOperation
	}
	if m.disposed.Load() {
		return *new(T), ErrDisposed
	}

	var cfg runConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	m.mu.Lock()
	m.op = op
	m.lastRun = cfg
	m.mu.Unlock()

	return m.run(ctx, op, cfg, "execute")
}

// Refresh replays the most recently executed operation. Options given
// here overlay the remembered ones for this call only.
//
// With no prior Execute, Refresh logs a warning, performs no state
// mutation, and returns ErrNoOperation.
func (m *Manager[T]) Refresh(ctx context.Context, opts ...RunOption) (T, error) {
	if m.disposed.Load() {
		return *new(T), ErrDisposed
	}

	m.mu.Lock()
	op := m.op
	cfg := m.lastRun
	m.mu.Unlock()

	if op == nil {
		m.logger.Warn("refresh called before any operation")
		return *new(T), ErrNoOperation
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return m.run(ctx, op, cfg, "refresh")
}

// run drives one operation through the begin/settle lifecycle.
func (m *Manager[T]) run(ctx context.Context, op Operation[T], cfg runConfig, kind string) (T, error) {
	m.begin(cfg)

	done := func(error) {}
	if m.probe != nil {
		ctx, done = m.probe.OperationStarted(ctx, m.name, kind)
	}

	value, err := m.invoke(ctx, op, cfg)

	if err != nil {
		opErr := wrapError(err)
		m.fail(opErr, cfg)
		if cfg.onError != nil {
			cfg.onError(err)
		}
		done(err)
		if cfg.onDone != nil {
			cfg.onDone()
		}
		if cfg.repanic && opErr.Panicked() {
			panic(opErr.panicValue)
		}
		return *new(T), err
	}

	m.succeed(value)
	done(nil)
	if cfg.onDone != nil {
		cfg.onDone()
	}
	return value, nil
}

// invoke calls the operation and the optional result transform with
// panic recovery. A recovered panic comes back as an OpError.
func (m *Manager[T]) invoke(ctx context.Context, op Operation[T], cfg runConfig) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			m.logger.Error("operation panic",
				"panic", r,
				"stack", string(stack))
			value = *new(T)
			err = panicError(r, stack)
		}
	}()

	value, err = op(ctx)
	if err != nil || cfg.transform == nil {
		return value, err
	}

	tf, ok := cfg.transform.(func(context.Context, T) (T, error))
	if !ok {
		m.logger.Warn("result transform has mismatched type, ignoring")
		return value, nil
	}
	return tf(ctx, value)
}

// begin applies the pre-run phase transition.
func (m *Manager[T]) begin(cfg runConfig) {
	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		return
	}

	prevView := m.view
	if cfg.silent {
		m.process = ProcessRunning
	} else {
		m.data = *new(T)
		m.hasData = false
		m.err = nil
		m.view = ViewLoading
		m.process = ProcessRunning
	}
	view := m.view
	m.mu.Unlock()

	if m.probe != nil && view != prevView {
		m.probe.PhaseChanged(m.name, view)
	}
	m.emit(false)
}

// succeed stores a successful outcome. Results arriving after Dispose
// are dropped.
func (m *Manager[T]) succeed(value T) {
	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		return
	}

	prevView := m.view
	m.data = value
	m.hasData = true
	m.err = nil
	m.view = ViewReady
	m.process = ProcessReady
	m.mu.Unlock()

	if m.probe != nil && prevView != ViewReady {
		m.probe.PhaseChanged(m.name, ViewReady)
	}
	m.emit(false)
}

// fail stores a failed outcome. A silent run with a previous result or
// error records the error without surfacing it, unless the manager was
// configured with DropData. Results arriving after Dispose are dropped.
func (m *Manager[T]) fail(opErr *OpError, cfg runConfig) {
	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		return
	}

	surface := true
	if cfg.silent && m.silentFailure == PreserveData && (m.hasData || m.err != nil) {
		surface = false
	}

	prevView := m.view
	m.err = opErr
	m.process = ProcessError
	if surface {
		m.data = *new(T)
		m.hasData = false
		m.view = ViewError
	}
	view := m.view
	m.mu.Unlock()

	if m.probe != nil {
		m.probe.ErrorStored(m.name, opErr)
		if view != prevView {
			m.probe.PhaseChanged(m.name, view)
		}
	}
	m.emit(false)
}

// =============================================================================
// Direct state mutation
// =============================================================================

// Modify applies a transform to the current result. Returning ok=false
// leaves the manager untouched; otherwise the value is stored and both
// phases become ready. The transform runs outside the internal lock, so
// a concurrent mutation races with it and the last writer wins.
func (m *Manager[T]) Modify(fn func(T) (T, bool)) {
	if fn == nil || m.disposed.Load() {
		return
	}

	m.mu.Lock()
	current := m.data
	m.mu.Unlock()

	value, ok := fn(current)
	if !ok {
		return
	}

	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		return
	}
	prevView := m.view
	m.data = value
	m.hasData = true
	m.err = nil
	m.view = ViewReady
	m.process = ProcessReady
	m.mu.Unlock()

	if m.probe != nil && prevView != ViewReady {
		m.probe.PhaseChanged(m.name, ViewReady)
	}
	m.emit(false)
}

// SetError stores err directly. By default the visible phase flips to
// error and any result is discarded; with KeepView the phase and result
// stay as they are, recording a soft error that a renderer can surface
// inline. A nil err is ignored.
func (m *Manager[T]) SetError(err error, opts ...StateOption) {
	if err == nil || m.disposed.Load() {
		return
	}

	var cfg stateConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	opErr := wrapError(err)

	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		return
	}
	prevView := m.view
	m.err = opErr
	m.process = ProcessError
	if !cfg.keepView {
		m.data = *new(T)
		m.hasData = false
		m.view = ViewError
	}
	view := m.view
	m.mu.Unlock()

	if m.probe != nil {
		m.probe.ErrorStored(m.name, opErr)
		if view != prevView {
			m.probe.PhaseChanged(m.name, view)
		}
	}
	m.emit(cfg.deferNotify)
}

// Reset clears the result and error and sets the process phase back to
// idle. By default the visible phase flips to loading; with KeepView
// rendering is left untouched while observers are still notified. The
// remembered operation survives, so Refresh still works after a Reset.
func (m *Manager[T]) Reset(opts ...StateOption) {
	if m.disposed.Load() {
		return
	}

	var cfg stateConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	m.mu.Lock()
	if m.disposed.Load() {
		m.mu.Unlock()
		return
	}
	prevView := m.view
	m.data = *new(T)
	m.hasData = false
	m.err = nil
	m.process = ProcessIdle
	if !cfg.keepView {
		m.view = ViewLoading
	}
	view := m.view
	m.mu.Unlock()

	if m.probe != nil && view != prevView {
		m.probe.PhaseChanged(m.name, view)
	}
	m.emit(cfg.deferNotify)
}

// Dispose clears state and marks the manager inert. Subsequent mutating
// calls are no-ops and fire no notifications; an in-flight operation's
// eventual result is dropped. Dispose itself does not notify. Idempotent.
func (m *Manager[T]) Dispose() {
	if m.disposed.Swap(true) {
		return
	}

	m.mu.Lock()
	m.data = *new(T)
	m.hasData = false
	m.err = nil
	m.op = nil
	m.lastRun = runConfig{}
	m.mu.Unlock()

	m.notifier.Close()
}

// Disposed reports whether Dispose has been called.
func (m *Manager[T]) Disposed() bool {
	return m.disposed.Load()
}

// =============================================================================
// Accessors
// =============================================================================

// Data returns the stored result, or the zero value when none is stored.
func (m *Manager[T]) Data() T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// DataOr returns the stored result, or fallback when none is stored.
func (m *Manager[T]) DataOr(fallback T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasData {
		return m.data
	}
	return fallback
}

// HasData reports whether a result is stored.
func (m *Manager[T]) HasData() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasData
}

// Error returns the stored error, or nil. The returned error is always
// an *OpError.
func (m *Manager[T]) Error() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil {
		return nil
	}
	return m.err
}

// HasError reports whether an error is stored, including errors recorded
// by a non-surfaced silent failure.
func (m *Manager[T]) HasError() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err != nil
}

// ViewState returns the visible phase.
func (m *Manager[T]) ViewState() ViewState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// ProcessState returns the process phase.
func (m *Manager[T]) ProcessState() ProcessState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.process
}

// IsLoading reports whether the visible phase is loading.
func (m *Manager[T]) IsLoading() bool {
	return m.ViewState() == ViewLoading
}

// IsReady reports whether the visible phase is ready.
func (m *Manager[T]) IsReady() bool {
	return m.ViewState() == ViewReady
}

// IsError reports whether the visible phase is error.
func (m *Manager[T]) IsError() bool {
	return m.ViewState() == ViewError
}

// IsRunning reports whether an operation is in progress.
func (m *Manager[T]) IsRunning() bool {
	return m.ProcessState() == ProcessRunning
}

// Snapshot is a consistent point-in-time view of a manager's state.
type Snapshot[T any] struct {
	View    ViewState
	Process ProcessState
	Data    T
	HasData bool
	Err     error
}

// Snapshot returns all state fields read under one lock acquisition.
func (m *Manager[T]) Snapshot() Snapshot[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot[T]{
		View:    m.view,
		Process: m.process,
		Data:    m.data,
		HasData: m.hasData,
	}
	if m.err != nil {
		s.Err = m.err
	}
	return s
}

// emit delivers an observer notification, deferred when the call or the
// manager default asks for it. Runs outside the state lock so observers
// can call accessors freely.
func (m *Manager[T]) emit(deferred bool) {
	if deferred || m.deferNotify {
		m.notifier.NotifyDeferred()
	} else {
		m.notifier.Notify()
	}
}
