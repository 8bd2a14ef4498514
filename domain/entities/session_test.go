package entities

import "testing"

func TestSessionStateTransitions(t *testing.T) {
	tests := []struct {
		name string
		from SessionState
		to   SessionState
		want bool
	}{
		{"idle to streaming", SessionStateIdle, SessionStateStreaming, true},
		{"streaming to stopping", SessionStateStreaming, SessionStateStopping, true},
		{"idle to closed", SessionStateIdle, SessionStateClosed, true},
		{"streaming to closed", SessionStateStreaming, SessionStateClosed, true},
		{"stopping to closed", SessionStateStopping, SessionStateClosed, true},
		{"idle to stopping", SessionStateIdle, SessionStateStopping, false},
		{"stopping to streaming", SessionStateStopping, SessionStateStreaming, false},
		{"closed to streaming", SessionStateClosed, SessionStateStreaming, false},
		{"closed to closed", SessionStateClosed, SessionStateClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSessionStateTerminal(t *testing.T) {
	if SessionStateStreaming.Terminal() {
		t.Error("streaming must not be terminal")
	}
	if !SessionStateClosed.Terminal() {
		t.Error("closed must be terminal")
	}
}
