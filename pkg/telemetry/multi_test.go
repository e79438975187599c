package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/loadable-dev/loadable/pkg/future"
)

// fakeProbe records calls and tags its settle callback.
type fakeProbe struct {
	tag     string
	started int
	phases  int
	errs    int
	settles *[]string
}

func (p *fakeProbe) OperationStarted(ctx context.Context, manager, mode string) (context.Context, func(error)) {
	p.started++
	return ctx, func(err error) {
		*p.settles = append(*p.settles, p.tag)
	}
}

func (p *fakeProbe) PhaseChanged(manager string, view future.ViewState) { p.phases++ }

func (p *fakeProbe) ErrorStored(manager string, err error) { p.errs++ }

func TestMulti_FansOut(t *testing.T) {
	var settles []string
	a := &fakeProbe{tag: "a", settles: &settles}
	b := &fakeProbe{tag: "b", settles: &settles}
	probe := Multi(a, b)

	_, done := probe.OperationStarted(context.Background(), "orders", "execute")
	done(nil)
	probe.PhaseChanged("orders", future.ViewReady)
	probe.ErrorStored("orders", errors.New("boom"))

	if a.started != 1 || b.started != 1 {
		t.Errorf("started = %d/%d, want 1/1", a.started, b.started)
	}
	if a.phases != 1 || b.phases != 1 {
		t.Errorf("phases = %d/%d, want 1/1", a.phases, b.phases)
	}
	if a.errs != 1 || b.errs != 1 {
		t.Errorf("errs = %d/%d, want 1/1", a.errs, b.errs)
	}
}

func TestMulti_SettlesInReverseOrder(t *testing.T) {
	var settles []string
	a := &fakeProbe{tag: "a", settles: &settles}
	b := &fakeProbe{tag: "b", settles: &settles}
	probe := Multi(a, b)

	_, done := probe.OperationStarted(context.Background(), "orders", "execute")
	done(nil)

	if len(settles) != 2 || settles[0] != "b" || settles[1] != "a" {
		t.Errorf("settle order = %v, want [b a]", settles)
	}
}

func TestMulti_SkipsNilProbes(t *testing.T) {
	var settles []string
	a := &fakeProbe{tag: "a", settles: &settles}
	probe := Multi(nil, a, nil)

	probe.PhaseChanged("orders", future.ViewReady)

	if a.phases != 1 {
		t.Errorf("phases = %d, want 1", a.phases)
	}
}

func TestMulti_Empty(t *testing.T) {
	probe := Multi()

	ctx, done := probe.OperationStarted(context.Background(), "orders", "execute")
	if ctx == nil {
		t.Fatal("expected a context back")
	}
	done(nil)
	probe.PhaseChanged("orders", future.ViewReady)
	probe.ErrorStored("orders", errors.New("boom"))
}
