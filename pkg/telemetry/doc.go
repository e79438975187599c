// Package telemetry provides future.Probe implementations for metrics
// and tracing.
//
// The future package defines the Probe hook but ships no instrumentation
// of its own. This package supplies the standard implementations:
//
//   - Metrics records Prometheus counters and histograms for operation
//     outcomes, durations, phase transitions, and stored errors.
//   - Tracing opens an OpenTelemetry span per operation.
//   - Multi fans probe callbacks out to several probes.
//
// Attach a probe when constructing a manager:
//
//	probe := telemetry.Multi(
//	    telemetry.NewMetrics(),
//	    telemetry.NewTracing(),
//	)
//	m := future.New[[]Order](
//	    future.WithName("orders"),
//	    future.WithProbe(probe),
//	)
package telemetry
