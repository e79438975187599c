package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/loadable-dev/loadable/pkg/future"
)

func TestTracingProbe_WrapsOperationContext(t *testing.T) {
	probe := NewTracing()
	parent := context.Background()

	ctx, done := probe.OperationStarted(parent, "orders", "execute")
	if ctx == parent {
		t.Fatal("expected a span-wrapped context")
	}

	done(nil) // Should not panic
}

func TestTracingProbe_SettleWithError(t *testing.T) {
	probe := NewTracing(WithTracerName("test-app"))

	_, done := probe.OperationStarted(context.Background(), "orders", "refresh")
	done(errors.New("boom")) // Should not panic
}

func TestTracingProbe_FilterSkipsManager(t *testing.T) {
	probe := NewTracing(
		WithManagerFilter(func(manager string) bool { return manager != "noisy" }),
	)
	parent := context.Background()

	ctx, done := probe.OperationStarted(parent, "noisy", "execute")
	if ctx != parent {
		t.Fatal("expected the context untouched when the filter skips tracing")
	}
	done(nil)

	ctx, done = probe.OperationStarted(parent, "orders", "execute")
	if ctx == parent {
		t.Fatal("expected a span-wrapped context for an unfiltered manager")
	}
	done(nil)
}

func TestTracingProbe_OperationSeesSpanContext(t *testing.T) {
	probe := NewTracing()
	parent := context.Background()
	m := future.New[int](future.WithName("orders"), future.WithProbe(probe))

	var gotCtx context.Context
	m.Execute(parent, func(ctx context.Context) (int, error) {
		gotCtx = ctx
		return 1, nil
	})

	if gotCtx == parent {
		t.Fatal("expected the operation to run under the span context")
	}
}
