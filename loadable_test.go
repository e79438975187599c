package loadable

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestExecuteThroughRootAPI(t *testing.T) {
	m := New[int](WithName("answer"))
	defer m.Dispose()

	data, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if data != 42 {
		t.Fatalf("data = %d, want 42", data)
	}
	if m.ViewState() != ViewReady {
		t.Fatalf("view = %v, want %v", m.ViewState(), ViewReady)
	}
	if m.ProcessState() != ProcessReady {
		t.Fatalf("process = %v, want %v", m.ProcessState(), ProcessReady)
	}
}

func TestStartDeliversAsync(t *testing.T) {
	gate := make(chan struct{})
	m := Start(context.Background(), func(ctx context.Context) (string, error) {
		<-gate
		return "ready", nil
	})
	defer m.Dispose()

	if !m.IsLoading() {
		t.Fatal("manager should be loading until the operation settles")
	}

	ready := make(chan struct{}, 1)
	unsub := m.Subscribe(func() {
		if m.IsReady() {
			select {
			case ready <- struct{}{}:
			default:
			}
		}
	})
	defer unsub()

	close(gate)

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	if m.Data() != "ready" {
		t.Fatalf("data = %q, want %q", m.Data(), "ready")
	}
}

func TestMatchThroughRootAPI(t *testing.T) {
	m := New[int]()
	defer m.Dispose()

	got := Match(m,
		func() string { return "loading" },
		func(err error) string { return "error" },
		func(v int) string { return "ready" },
	)
	if got != "loading" {
		t.Fatalf("Match = %q, want %q", got, "loading")
	}

	if _, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	got = Match(m,
		func() string { return "loading" },
		func(err error) string { return "error" },
		func(v int) string { return "ready" },
	)
	if got != "ready" {
		t.Fatalf("Match = %q, want %q", got, "ready")
	}

	m.SetError(errors.New("boom"))
	got = Match(m,
		func() string { return "loading" },
		func(err error) string { return err.Error() },
		func(v int) string { return "ready" },
	)
	if got != "boom" {
		t.Fatalf("Match = %q, want %q", got, "boom")
	}
}

func TestSilentFailurePolicyReexport(t *testing.T) {
	m := New[int](WithSilentFailure(DropData))
	defer m.Dispose()

	ctx := context.Background()
	if _, err := m.Execute(ctx, func(ctx context.Context) (int, error) {
		return 1, nil
	}); err != nil {
		t.Fatalf("seed Execute failed: %v", err)
	}

	_, err := m.Execute(ctx, func(ctx context.Context) (int, error) {
		return 0, errors.New("backend down")
	}, Silent())
	if err == nil {
		t.Fatal("want error from failing operation")
	}
	if m.ViewState() != ViewError {
		t.Fatalf("view = %v, want %v under DropData", m.ViewState(), ViewError)
	}
	if m.HasData() {
		t.Fatal("DropData should discard the previous result")
	}
}

func TestSchedulerLoopReexport(t *testing.T) {
	loop := NewLoop(WithQueueSize(64))
	defer loop.Stop()

	m := New[int](WithScheduler(loop), WithDeferredNotify())
	defer m.Dispose()

	var count atomic.Int32
	unsub := m.Subscribe(func() { count.Add(1) })
	defer unsub()

	if _, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 9, nil
	}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	loop.Flush()
	if count.Load() == 0 {
		t.Fatal("deferred notification never delivered")
	}
}

func TestSentinelReexports(t *testing.T) {
	m := New[int]()

	if _, err := m.Refresh(context.Background()); !errors.Is(err, ErrNoOperation) {
		t.Fatalf("Refresh on idle manager: err = %v, want ErrNoOperation", err)
	}

	m.Dispose()
	if _, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, nil
	}); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Execute after Dispose: err = %v, want ErrDisposed", err)
	}
}
