package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/loadable-dev/loadable/pkg/future"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsProbe_RecordsSuccessAndError(t *testing.T) {
	t.Run("success increments ok counter and duration", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		probe := NewMetrics(WithRegistry(reg))
		m := future.New[int](future.WithName("orders"), future.WithProbe(probe))

		_, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
			return 1, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := metricCounterValue(t, probe.operationsTotal.WithLabelValues("orders", "execute", "ok")); got != 1 {
			t.Fatalf("operations_total(ok)=%v, want 1", got)
		}
		if got := metricCounterValue(t, probe.operationsTotal.WithLabelValues("orders", "execute", "error")); got != 0 {
			t.Fatalf("operations_total(error)=%v, want 0", got)
		}
		if got := metricHistogramCount(t, probe.operationDuration.WithLabelValues("orders")); got == 0 {
			t.Fatal("expected operation_duration_seconds histogram to have sample count > 0")
		}
		if got := metricCounterValue(t, probe.phaseTransitions.WithLabelValues("orders", "ready")); got != 1 {
			t.Fatalf("phase_transitions_total(ready)=%v, want 1", got)
		}
	})

	t.Run("failure increments error counter and stored errors", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		probe := NewMetrics(WithRegistry(reg))
		m := future.New[int](future.WithName("orders"), future.WithProbe(probe))

		_, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
			return 0, errors.New("boom")
		})
		if err == nil {
			t.Fatal("expected error to propagate")
		}

		if got := metricCounterValue(t, probe.operationsTotal.WithLabelValues("orders", "execute", "error")); got != 1 {
			t.Fatalf("operations_total(error)=%v, want 1", got)
		}
		if got := metricCounterValue(t, probe.errorsStored.WithLabelValues("orders")); got != 1 {
			t.Fatalf("errors_stored_total=%v, want 1", got)
		}
		if got := metricCounterValue(t, probe.phaseTransitions.WithLabelValues("orders", "error")); got != 1 {
			t.Fatalf("phase_transitions_total(error)=%v, want 1", got)
		}
	})
}

func TestMetricsProbe_PanicStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	probe := NewMetrics(WithRegistry(reg))
	m := future.New[int](future.WithName("orders"), future.WithProbe(probe))

	_, err := m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		panic("kaboom")
	})
	if err == nil {
		t.Fatal("expected error from panicking operation")
	}

	if got := metricCounterValue(t, probe.operationsTotal.WithLabelValues("orders", "execute", "panic")); got != 1 {
		t.Fatalf("operations_total(panic)=%v, want 1", got)
	}
	if got := metricCounterValue(t, probe.operationsTotal.WithLabelValues("orders", "execute", "error")); got != 0 {
		t.Fatalf("operations_total(error)=%v, want 0", got)
	}
}

func TestMetricsProbe_RefreshMode(t *testing.T) {
	reg := prometheus.NewRegistry()
	probe := NewMetrics(WithRegistry(reg))
	m := future.New[int](future.WithName("orders"), future.WithProbe(probe))

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})
	m.Refresh(context.Background())

	if got := metricCounterValue(t, probe.operationsTotal.WithLabelValues("orders", "refresh", "ok")); got != 1 {
		t.Fatalf("operations_total(refresh,ok)=%v, want 1", got)
	}
}

func TestMetricsProbe_SilentFailureKeepsPhase(t *testing.T) {
	reg := prometheus.NewRegistry()
	probe := NewMetrics(WithRegistry(reg))
	m := future.New[int](future.WithName("orders"), future.WithProbe(probe))

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 5, nil
	})
	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	}, future.Silent())

	if got := metricCounterValue(t, probe.errorsStored.WithLabelValues("orders")); got != 1 {
		t.Fatalf("errors_stored_total=%v, want 1", got)
	}
	if got := metricCounterValue(t, probe.phaseTransitions.WithLabelValues("orders", "error")); got != 0 {
		t.Fatalf("phase_transitions_total(error)=%v, want 0 after non-surfaced failure", got)
	}
}

func TestMetricsProbe_NamespaceAndLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	probe := NewMetrics(
		WithRegistry(reg),
		WithNamespace("myapp"),
		WithSubsystem("jobs"),
		WithConstLabels(prometheus.Labels{"region": "eu"}),
		WithBuckets([]float64{0.1, 1, 10}),
	)
	m := future.New[int](future.WithName("orders"), future.WithProbe(probe))

	m.Execute(context.Background(), func(ctx context.Context) (int, error) {
		return 1, nil
	})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "myapp_jobs_operations_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected myapp_jobs_operations_total in gathered metrics")
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"plain error", errors.New("boom"), "error"},
		{"wrapped op error", &future.OpError{Err: errors.New("boom")}, "error"},
	}
	for _, tt := range tests {
		if got := statusLabel(tt.err); got != tt.want {
			t.Errorf("statusLabel(%s) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
