package future

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStartRunsOperation(t *testing.T) {
	gate := make(chan struct{})
	ready := make(chan struct{})

	m := Start(context.Background(), func(ctx context.Context) (int, error) {
		<-gate
		return 42, nil
	})
	cancel := m.Subscribe(func() {
		if m.IsReady() {
			select {
			case ready <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	close(gate)

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the started operation")
	}

	if m.Data() != 42 {
		t.Errorf("Data() = %d, want 42", m.Data())
	}
	if m.ProcessState() != ProcessReady {
		t.Errorf("ProcessState() = %v, want %v", m.ProcessState(), ProcessReady)
	}
}

func TestStartFailure(t *testing.T) {
	boom := errors.New("boom")
	gate := make(chan struct{})
	settled := make(chan struct{})

	m := Start(context.Background(), func(ctx context.Context) (int, error) {
		<-gate
		return 0, boom
	})
	cancel := m.Subscribe(func() {
		if m.IsError() {
			select {
			case settled <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	close(gate)

	select {
	case <-settled:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the started operation")
	}

	if !errors.Is(m.Error(), boom) {
		t.Errorf("Error() = %v, want %v", m.Error(), boom)
	}
}

func TestStartCarriesOptions(t *testing.T) {
	gate := make(chan struct{})
	done := make(chan struct{})

	m := Start(context.Background(), func(ctx context.Context) (int, error) {
		<-gate
		return 1, nil
	}, WithName("boot"))
	cancel := m.Subscribe(func() {
		if m.IsReady() {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	close(gate)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the started operation")
	}

	if m.Name() != "boot" {
		t.Errorf("Name() = %q, want boot", m.Name())
	}
}
