package future

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMatchLoading(t *testing.T) {
	m := New[int]()

	got := Match(m,
		func() string { return "loading" },
		func(err error) string { return "error" },
		func(v int) string { return "ready" },
	)

	if got != "loading" {
		t.Errorf("Match = %q, want loading", got)
	}
}

func TestMatchReady(t *testing.T) {
	m := New[int]()
	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	got := Match(m,
		func() string { return "loading" },
		func(err error) string { return "error" },
		func(v int) string { return fmt.Sprintf("ready:%d", v) },
	)

	if got != "ready:42" {
		t.Errorf("Match = %q, want ready:42", got)
	}
}

func TestMatchError(t *testing.T) {
	m := New[int]()
	boom := errors.New("boom")
	m.SetError(boom)

	got := Match(m,
		func() string { return "loading" },
		func(err error) string { return "error:" + err.Error() },
		func(v int) string { return "ready" },
	)

	if got != "error:boom" {
		t.Errorf("Match = %q, want error:boom", got)
	}
}

func TestMatchSilentFailureStaysReady(t *testing.T) {
	m := New[int]()
	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 5, nil
	})
	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	}, Silent())

	got := Match(m,
		func() string { return "loading" },
		func(err error) string { return "error" },
		func(v int) string { return fmt.Sprintf("ready:%d", v) },
	)

	if got != "ready:5" {
		t.Errorf("Match = %q, want ready:5", got)
	}
}
