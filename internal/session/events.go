package session

// EventType identifies an outbound session event.
type EventType string

const (
	EventSessionStarted    EventType = "session_started"
	EventInterimTranscript EventType = "interim_transcript"
	EventFinalTranscript   EventType = "final_transcript"
	EventAIResponse        EventType = "ai_response"
)

// Event is one outbound message destined for the connection that owns a
// session.
type Event struct {
	Type      EventType
	SessionID string
	Text      string
}

// EventSink delivers events to a specific connection. Delivery to a
// connection that is gone is a silent no-op; the sink never blocks the
// caller on transport I/O.
type EventSink interface {
	Deliver(connectionID string, event Event)
}
