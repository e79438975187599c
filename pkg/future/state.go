package future

// ViewState is the visible lifecycle phase of a Manager: what a renderer
// should currently show.
type ViewState int

const (
	// ViewLoading is the initial phase, and the phase after a resetting
	// run starts. Nothing is available to render yet.
	ViewLoading ViewState = iota

	// ViewReady means a result is stored and renderable.
	ViewReady

	// ViewError means a failure was surfaced and should be rendered.
	ViewError
)

// String returns a human-readable name for the view state.
func (s ViewState) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewReady:
		return "ready"
	case ViewError:
		return "error"
	default:
		return "unknown"
	}
}

// ProcessState is the secondary lifecycle phase of a Manager. It tracks
// operation activity independently of what is rendered, which is how a
// refresh in progress is distinguished from an initial load: during a
// silent refresh the view stays ready while the process phase is running.
type ProcessState int

const (
	// ProcessIdle is the initial phase, before any operation has run.
	ProcessIdle ProcessState = iota

	// ProcessRunning indicates an operation is in progress.
	ProcessRunning

	// ProcessReady indicates the last operation completed successfully.
	ProcessReady

	// ProcessError indicates the last operation failed.
	ProcessError
)

// String returns a human-readable name for the process state.
func (s ProcessState) String() string {
	switch s {
	case ProcessIdle:
		return "idle"
	case ProcessRunning:
		return "running"
	case ProcessReady:
		return "ready"
	case ProcessError:
		return "error"
	default:
		return "unknown"
	}
}

// SilentFailurePolicy decides what a failed silent run does to a
// previously stored result.
type SilentFailurePolicy int

const (
	// PreserveData keeps the previous result and visible phase; the
	// error is recorded for inspection only. This is the default.
	PreserveData SilentFailurePolicy = iota

	// DropData discards the previous result and surfaces the error,
	// exactly as a resetting run would.
	DropData
)

// String returns a human-readable name for the policy.
func (p SilentFailurePolicy) String() string {
	switch p {
	case PreserveData:
		return "preserve"
	case DropData:
		return "drop"
	default:
		return "unknown"
	}
}
