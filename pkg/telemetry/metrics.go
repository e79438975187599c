package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/loadable-dev/loadable/pkg/future"
)

// MetricsConfig configures the Prometheus probe.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "loadable").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for operation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus probe.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "loadable",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Metrics is a future.Probe backed by Prometheus collectors.
//
// Metrics collected:
//   - loadable_operations_total: Counter of settled operations by manager, mode, and status
//   - loadable_operation_duration_seconds: Histogram of operation duration by manager
//   - loadable_phase_transitions_total: Counter of visible phase transitions by manager and phase
//   - loadable_errors_stored_total: Counter of stored errors by manager
//
// The status label is "ok", "error", or "panic". One Metrics value owns
// one set of registered collectors; share it across managers and create
// a new one per registry, not per manager.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	phaseTransitions  *prometheus.CounterVec
	errorsStored      *prometheus.CounterVec
}

// NewMetrics creates the probe and registers its collectors with the
// configured registry. Registration panics on collision, as promauto
// does; use WithRegistry to isolate registries in tests.
//
// Example:
//
//	probe := telemetry.NewMetrics(
//	    telemetry.WithNamespace("myapp"),
//	)
//	m := future.New[[]Order](
//	    future.WithName("orders"),
//	    future.WithProbe(probe),
//	)
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operations_total",
			Help:        "Total number of settled operations",
			ConstLabels: config.ConstLabels,
		}, []string{"manager", "mode", "status"}),

		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operation_duration_seconds",
			Help:        "Operation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"manager"}),

		phaseTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "phase_transitions_total",
			Help:        "Total number of visible phase transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"manager", "phase"}),

		errorsStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_stored_total",
			Help:        "Total number of errors stored, surfaced or not",
			ConstLabels: config.ConstLabels,
		}, []string{"manager"}),
	}
}

// OperationStarted implements future.Probe. The settle callback records
// the duration and outcome.
func (m *Metrics) OperationStarted(ctx context.Context, manager, mode string) (context.Context, func(error)) {
	start := time.Now()
	return ctx, func(err error) {
		m.operationDuration.WithLabelValues(manager).Observe(time.Since(start).Seconds())
		m.operationsTotal.WithLabelValues(manager, mode, statusLabel(err)).Inc()
	}
}

// PhaseChanged implements future.Probe.
func (m *Metrics) PhaseChanged(manager string, view future.ViewState) {
	m.phaseTransitions.WithLabelValues(manager, view.String()).Inc()
}

// ErrorStored implements future.Probe.
func (m *Metrics) ErrorStored(manager string, err error) {
	m.errorsStored.WithLabelValues(manager).Inc()
}

// statusLabel categorizes an operation outcome.
// Three fixed values keep the label low-cardinality.
func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var opErr *future.OpError
	if errors.As(err, &opErr) && opErr.Panicked() {
		return "panic"
	}
	return "error"
}
