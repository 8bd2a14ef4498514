package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/meetmate-ai/server/internal/session"
)

// MessageType defines the type of a WebSocket control message. Audio travels
// as binary frames and has no JSON envelope.
type MessageType string

const (
	// Inbound control messages.
	MessageTypeStartSession MessageType = "start_session"
	MessageTypeChangeStyle  MessageType = "change_style"
	MessageTypeStopSession  MessageType = "stop_session"
	MessageTypePing         MessageType = "ping"

	// Outbound messages.
	MessageTypeSessionStarted    MessageType = "session_started"
	MessageTypeInterimTranscript MessageType = "interim_transcript"
	MessageTypeFinalTranscript   MessageType = "final_transcript"
	MessageTypeAIResponse        MessageType = "ai_response"
	MessageTypePong              MessageType = "pong"
	MessageTypeError             MessageType = "error"
)

// BaseMessage defines the common structure for all control messages.
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// StartSessionMessage requests a new transcription session for a meeting.
type StartSessionMessage struct {
	BaseMessage
	MeetingID string `json:"meeting_id"`
}

// ChangeStyleMessage switches the answer style for subsequent suggestions.
type ChangeStyleMessage struct {
	BaseMessage
	StyleID string `json:"style_id"`
}

// StopSessionMessage ends the active session.
type StopSessionMessage struct {
	BaseMessage
}

// PingMessage is an application-level connection health check.
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// SessionStartedMessage acknowledges a successful session start.
type SessionStartedMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
}

// TranscriptMessage carries an interim or final transcript segment.
type TranscriptMessage struct {
	BaseMessage
	SessionID  string `json:"session_id"`
	Transcript string `json:"transcript"`
}

// AIResponseMessage carries the reply suggestion for a finalized segment.
type AIResponseMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// PongMessage answers a ping.
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage reports a request failure to the client.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// ParseMessage validates an inbound control message and returns its typed
// form.
func ParseMessage(raw []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeStartSession:
		var msg StartSessionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("invalid start_session message: %w", err)
		}
		if msg.MeetingID == "" {
			return nil, fmt.Errorf("meeting_id is required")
		}
		return &msg, nil

	case MessageTypeChangeStyle:
		var msg ChangeStyleMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("invalid change_style message: %w", err)
		}
		if msg.StyleID == "" {
			return nil, fmt.Errorf("style_id is required")
		}
		return &msg, nil

	case MessageTypeStopSession:
		var msg StopSessionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("invalid stop_session message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

// MarshalEvent converts a session event into its outbound wire form.
func MarshalEvent(ev session.Event) ([]byte, error) {
	base := BaseMessage{Timestamp: time.Now().Format(time.RFC3339)}

	switch ev.Type {
	case session.EventSessionStarted:
		base.Type = MessageTypeSessionStarted
		return json.Marshal(&SessionStartedMessage{BaseMessage: base, SessionID: ev.SessionID})
	case session.EventInterimTranscript:
		base.Type = MessageTypeInterimTranscript
		return json.Marshal(&TranscriptMessage{BaseMessage: base, SessionID: ev.SessionID, Transcript: ev.Text})
	case session.EventFinalTranscript:
		base.Type = MessageTypeFinalTranscript
		return json.Marshal(&TranscriptMessage{BaseMessage: base, SessionID: ev.SessionID, Transcript: ev.Text})
	case session.EventAIResponse:
		base.Type = MessageTypeAIResponse
		return json.Marshal(&AIResponseMessage{BaseMessage: base, SessionID: ev.SessionID, Text: ev.Text})
	default:
		return nil, fmt.Errorf("unsupported event type: %s", ev.Type)
	}
}

// NewErrorMessage creates a standardized error message.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeError,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Code:    code,
		Message: message,
	}
}

// NewPongMessage creates a pong response message.
func NewPongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePong,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Data: data,
	}
}
