package future

import "testing"

func TestViewStateStrings(t *testing.T) {
	tests := []struct {
		state ViewState
		want  string
	}{
		{ViewLoading, "loading"},
		{ViewReady, "ready"},
		{ViewError, "error"},
		{ViewState(99), "unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("ViewState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestProcessStateStrings(t *testing.T) {
	tests := []struct {
		state ProcessState
		want  string
	}{
		{ProcessIdle, "idle"},
		{ProcessRunning, "running"},
		{ProcessReady, "ready"},
		{ProcessError, "error"},
		{ProcessState(99), "unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("ProcessState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestSilentFailurePolicyStrings(t *testing.T) {
	tests := []struct {
		policy SilentFailurePolicy
		want   string
	}{
		{PreserveData, "preserve"},
		{DropData, "drop"},
		{SilentFailurePolicy(99), "unknown"},
	}

	for _, tt := range tests {
		got := tt.policy.String()
		if got != tt.want {
			t.Errorf("SilentFailurePolicy(%d).String() = %q, want %q", tt.policy, got, tt.want)
		}
	}
}
