package future

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOnSuccessTransform(t *testing.T) {
	m := New[int]()

	got, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 10, nil
	}, OnSuccess(func(ctx context.Context, v int) (int, error) {
		return v + 1, nil
	}))

	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if got != 11 {
		t.Errorf("Execute() = %d, want transformed 11", got)
	}
	if m.Data() != 11 {
		t.Errorf("Data() = %d, want 11", m.Data())
	}
}

func TestOnSuccessTransformFailure(t *testing.T) {
	m := New[int]()
	boom := errors.New("transform boom")

	_, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 10, nil
	}, OnSuccess(func(ctx context.Context, v int) (int, error) {
		return 0, boom
	}))

	// A failing transform fails the run as if the operation had failed
	if !errors.Is(err, boom) {
		t.Errorf("Execute() error = %v, want %v", err, boom)
	}
	if m.ViewState() != ViewError {
		t.Errorf("view = %v, want ViewError", m.ViewState())
	}
	if m.HasData() {
		t.Error("expected no data stored when the transform fails")
	}
}

func TestOnSuccessMismatchedTypeIgnored(t *testing.T) {
	m := New[int]()

	// A transform for the wrong result type cannot be applied
	got, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 10, nil
	}, OnSuccess(func(ctx context.Context, v string) (string, error) {
		return v + "!", nil
	}))

	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if got != 10 {
		t.Errorf("Execute() = %d, want untransformed 10", got)
	}
}

func TestOnDoneAlwaysFires(t *testing.T) {
	m := New[int]()

	doneCalls := 0
	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	}, OnDone(func() { doneCalls++ }))

	if doneCalls != 1 {
		t.Errorf("OnDone after success: %d calls, want 1", doneCalls)
	}

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	}, OnDone(func() { doneCalls++ }))

	if doneCalls != 2 {
		t.Errorf("OnDone after failure: %d calls, want 2", doneCalls)
	}
}

func TestCallbackOrderOnFailure(t *testing.T) {
	m := New[int]()
	var order []string

	m.Subscribe(func() { order = append(order, "notify") })

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	},
		OnError(func(err error) { order = append(order, "onError") }),
		OnDone(func() { order = append(order, "onDone") }),
	)

	// begin notify, completion notify, then onError, then onDone last
	want := []string{"notify", "notify", "onError", "onDone"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestOnErrorFiresOnSilentFailure(t *testing.T) {
	m := New[int]()
	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 5, nil
	})

	var seen error
	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("quiet boom")
	}, Silent(), OnError(func(err error) { seen = err }))

	// The callback fires even though the visible phase did not flip
	if seen == nil || seen.Error() != "quiet boom" {
		t.Errorf("OnError saw %v, want quiet boom", seen)
	}
	if m.ViewState() != ViewReady {
		t.Errorf("view = %v, want ViewReady", m.ViewState())
	}
}

func TestOnErrorNotCalledOnSuccess(t *testing.T) {
	m := New[int]()
	called := false

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	}, OnError(func(err error) { called = true }))

	if called {
		t.Error("OnError must not fire on success")
	}
}

func TestPanicRecovered(t *testing.T) {
	m := New[int]()

	_, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		panic("kaboom")
	})

	if err == nil {
		t.Fatal("expected error from panicking operation")
	}

	var oe *OpError
	if !errors.As(err, &oe) {
		t.Fatalf("error type = %T, want *OpError", err)
	}
	if !oe.Panicked() {
		t.Error("expected Panicked to report true")
	}
	if len(oe.Stack) == 0 {
		t.Error("expected captured stack")
	}
	if !strings.Contains(oe.Error(), "kaboom") {
		t.Errorf("Error() = %q, want it to mention the panic value", oe.Error())
	}
	if m.ViewState() != ViewError {
		t.Errorf("view = %v, want ViewError", m.ViewState())
	}
}

func TestPanicWithErrorValueUnwraps(t *testing.T) {
	m := New[int]()
	boom := errors.New("typed boom")

	_, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		panic(boom)
	})

	if !errors.Is(err, boom) {
		t.Errorf("panicking with an error should unwrap to it, got %v", err)
	}
}

func TestRepanic(t *testing.T) {
	m := New[int]()
	doneCalled := false

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected re-raised panic")
		}
		if r != "kaboom" {
			t.Errorf("recovered %v, want original panic value", r)
		}
		// Bookkeeping completed before the re-raise
		if m.ViewState() != ViewError {
			t.Errorf("view = %v, want ViewError before repanic", m.ViewState())
		}
		if !doneCalled {
			t.Error("OnDone must fire before the re-raise")
		}
	}()

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		panic("kaboom")
	}, Repanic(), OnDone(func() { doneCalled = true }))
}

func TestRepanicNotTriggeredByReturnedError(t *testing.T) {
	m := New[int]()

	// Returned errors come back as values even with Repanic set
	_, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	}, Repanic())

	if err == nil {
		t.Error("expected returned error")
	}
}
