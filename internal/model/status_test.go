package model

import "testing"

func TestCommandState_IsActive(t *testing.T) {
	tests := []struct {
		state    CommandState
		expected bool
	}{
		{CommandQueued, false},
		{CommandRunning, true},
		{CommandSucceeded, false},
		{CommandFailed, false},
		{CommandCancelled, false},
	}

	for _, test := range tests {
		result := test.state.IsActive()
		if result != test.expected {
			t.Errorf("CommandState(%s).IsActive() = %v, expected %v", test.state, result, test.expected)
		}
	}
}

func TestCommandState_IsPendingAndFinished(t *testing.T) {
	tests := []struct {
		state    CommandState
		pending  bool
		finished bool
	}{
		{CommandQueued, true, false},
		{CommandRunning, true, false},
		{CommandSucceeded, false, true},
		{CommandFailed, false, true},
		{CommandCancelled, false, true},
	}

	for _, test := range tests {
		if got := test.state.IsPending(); got != test.pending {
			t.Errorf("CommandState(%s).IsPending() = %v, expected %v", test.state, got, test.pending)
		}
		if got := test.state.IsFinished(); got != test.finished {
			t.Errorf("CommandState(%s).IsFinished() = %v, expected %v", test.state, got, test.finished)
		}
	}
}

func TestCommandState_String(t *testing.T) {
	state := CommandRunning
	expected := "Running"
	result := state.String()

	if result != expected {
		t.Errorf("CommandState.String() = %s, expected %s", result, expected)
	}
}
