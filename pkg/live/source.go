package live

import (
	"github.com/loadable-dev/loadable/pkg/future"
)

// Snapshot is the wire form of a source's state.
type Snapshot struct {
	View    string `json:"view"`
	Process string `json:"process"`
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
}

// Source is anything a Hub can expose: change notifications plus a
// serializable snapshot.
type Source interface {
	// Subscribe registers fn to run on every state change and returns
	// a cancel function.
	Subscribe(fn func()) func()

	// Snapshot returns the current state.
	Snapshot() Snapshot
}

// managerSource adapts a future.Manager to the Source interface.
type managerSource[T any] struct {
	m *future.Manager[T]
}

// SourceOf adapts a manager to the Source interface. The manager's data
// must be JSON-marshalable for the HTTP and WebSocket surfaces to work.
func SourceOf[T any](m *future.Manager[T]) Source {
	return managerSource[T]{m: m}
}

func (s managerSource[T]) Subscribe(fn func()) func() {
	return s.m.Subscribe(fn)
}

func (s managerSource[T]) Snapshot() Snapshot {
	snap := s.m.Snapshot()
	out := Snapshot{
		View:    snap.View.String(),
		Process: snap.Process.String(),
	}
	if snap.HasData {
		out.Data = snap.Data
	}
	if snap.Err != nil {
		out.Error = snap.Err.Error()
	}
	return out
}

// Register adapts and registers a manager in one step.
func Register[T any](h *Hub, name string, m *future.Manager[T]) error {
	return h.Register(name, SourceOf(m))
}
