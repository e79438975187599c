package telemetry

import (
	"context"

	"github.com/loadable-dev/loadable/pkg/future"
)

// multiProbe fans each callback out to several probes.
type multiProbe struct {
	probes []future.Probe
}

// Multi combines several probes into one. Callbacks are delivered in
// argument order; settle callbacks run in reverse so the innermost
// probe's span closes first. Nil probes are skipped.
func Multi(probes ...future.Probe) future.Probe {
	kept := make([]future.Probe, 0, len(probes))
	for _, p := range probes {
		if p != nil {
			kept = append(kept, p)
		}
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &multiProbe{probes: kept}
}

// OperationStarted implements future.Probe. Each probe sees the context
// returned by the previous one, so spans nest.
func (m *multiProbe) OperationStarted(ctx context.Context, manager, mode string) (context.Context, func(error)) {
	dones := make([]func(error), 0, len(m.probes))
	for _, p := range m.probes {
		var done func(error)
		ctx, done = p.OperationStarted(ctx, manager, mode)
		if done != nil {
			dones = append(dones, done)
		}
	}
	return ctx, func(err error) {
		for i := len(dones) - 1; i >= 0; i-- {
			dones[i](err)
		}
	}
}

// PhaseChanged implements future.Probe.
func (m *multiProbe) PhaseChanged(manager string, view future.ViewState) {
	for _, p := range m.probes {
		p.PhaseChanged(manager, view)
	}
}

// ErrorStored implements future.Probe.
func (m *multiProbe) ErrorStored(manager string, err error) {
	for _, p := range m.probes {
		p.ErrorStored(manager, err)
	}
}
