package entities

import "time"

// SessionState represents the lifecycle state of a live streaming session.
type SessionState string

const (
	// SessionStateIdle means the session is registered but not yet streaming.
	SessionStateIdle SessionState = "idle"
	// SessionStateStreaming means audio is accepted and results are flowing.
	SessionStateStreaming SessionState = "streaming"
	// SessionStateStopping means end-of-stream was signaled and buffered
	// results are draining.
	SessionStateStopping SessionState = "stopping"
	// SessionStateClosed is terminal; all session resources are released.
	SessionStateClosed SessionState = "closed"
)

// Terminal reports whether the state admits no further transitions.
func (s SessionState) Terminal() bool {
	return s == SessionStateClosed
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Closed is reachable from every non-terminal state because an
// unrecoverable stream error skips the stopping phase.
func (s SessionState) CanTransition(next SessionState) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case SessionStateStreaming:
		return s == SessionStateIdle
	case SessionStateStopping:
		return s == SessionStateStreaming
	case SessionStateClosed:
		return true
	default:
		return false
	}
}

// Session is a read-only snapshot of one client's live audio-to-suggestion
// pipeline for one meeting.
type Session struct {
	ID           string       `json:"id"`
	ConnectionID string       `json:"connection_id"`
	MeetingID    string       `json:"meeting_id"`
	Language     string       `json:"language"`
	StyleID      string       `json:"style_id"`
	State        SessionState `json:"state"`
	StartedAt    time.Time    `json:"started_at"`
}
