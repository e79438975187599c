package future

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/loadable-dev/loadable/pkg/runloop"
)

// stubScheduler queues dispatched callbacks until drained.
type stubScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (s *stubScheduler) Dispatch(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, fn)
}

func (s *stubScheduler) drain() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

func TestManagerDeferredNotify(t *testing.T) {
	sched := &stubScheduler{}
	m := New[int](WithScheduler(sched), WithDeferredNotify())

	var notified int
	m.Subscribe(func() { notified++ })

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})

	if notified != 0 {
		t.Fatalf("expected no notifications before drain, got %d", notified)
	}
	if got := sched.drain(); got != 2 {
		t.Errorf("expected 2 scheduled notifications, got %d", got)
	}
	if notified != 2 {
		t.Errorf("expected 2 notifications after drain, got %d", notified)
	}
}

func TestManagerSynchronousByDefault(t *testing.T) {
	// A scheduler alone does not defer; only WithDeferredNotify or the
	// per-call DeferNotify option routes through it.
	sched := &stubScheduler{}
	m := New[int](WithScheduler(sched))

	var notified int
	m.Subscribe(func() { notified++ })

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})

	if notified != 2 {
		t.Errorf("expected 2 synchronous notifications, got %d", notified)
	}
	if got := sched.drain(); got != 0 {
		t.Errorf("expected nothing scheduled, got %d", got)
	}
}

func TestSetErrorDeferNotifyOption(t *testing.T) {
	sched := &stubScheduler{}
	m := New[int](WithScheduler(sched))

	var notified int
	m.Subscribe(func() { notified++ })

	m.SetError(errors.New("boom"), DeferNotify())

	if notified != 0 {
		t.Fatalf("expected deferred notification, got %d immediate", notified)
	}
	sched.drain()
	if notified != 1 {
		t.Errorf("expected 1 notification after drain, got %d", notified)
	}
}

func TestResetDeferNotifyOption(t *testing.T) {
	sched := &stubScheduler{}
	m := New[int](WithScheduler(sched))

	var notified int
	m.Subscribe(func() { notified++ })

	m.Reset(DeferNotify())

	if notified != 0 {
		t.Fatalf("expected deferred notification, got %d immediate", notified)
	}
	sched.drain()
	if notified != 1 {
		t.Errorf("expected 1 notification after drain, got %d", notified)
	}
}

func TestManagerDeferredNotifyOnRunLoop(t *testing.T) {
	loop := runloop.New()
	defer loop.Stop()

	m := New[int](WithScheduler(loop), WithDeferredNotify())

	var mu sync.Mutex
	var notified int
	m.Subscribe(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	loop.Flush()

	mu.Lock()
	got := notified
	mu.Unlock()
	if got != 2 {
		t.Errorf("expected 2 notifications after flush, got %d", got)
	}
	if m.Data() != 42 {
		t.Errorf("Data() = %d, want 42", m.Data())
	}
}

func TestDeferredCoalescingObservedState(t *testing.T) {
	// Deferred observers see the state at delivery time, not at emit
	// time: both scheduled callbacks observe the final ready state.
	sched := &stubScheduler{}
	m := New[int](WithScheduler(sched), WithDeferredNotify())

	var views []ViewState
	m.Subscribe(func() { views = append(views, m.ViewState()) })

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})
	sched.drain()

	if len(views) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(views))
	}
	for i, v := range views {
		if v != ViewReady {
			t.Errorf("observation %d = %v, want %v", i, v, ViewReady)
		}
	}
}

func TestDeferredNotifyAfterDisposeDropped(t *testing.T) {
	sched := &stubScheduler{}
	m := New[int](WithScheduler(sched), WithDeferredNotify())

	var notified int
	m.Subscribe(func() { notified++ })

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})
	m.Dispose()
	sched.drain()

	if notified != 0 {
		t.Errorf("expected scheduled notifications dropped after dispose, got %d", notified)
	}
}
