package entities

import "time"

// TranscriptSegment is a single recognition result produced by the
// transcription stream. Interim segments are ephemeral and may be revised;
// final segments are persisted exactly once.
type TranscriptSegment struct {
	Text      string
	IsFinal   bool
	EmittedAt time.Time
}

// SuggestionResult is the outcome of one suggestion call for a finalized
// transcript segment. When OK is false, Text carries the language-appropriate
// fallback string instead of generated content.
type SuggestionResult struct {
	RequestText string
	StylePrompt string
	Language    string
	Text        string
	OK          bool
}

// TranscriptRecord is the durable pairing of a final transcript segment with
// its reply suggestion, keyed by meeting and insertion order.
type TranscriptRecord struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	MeetingID  string    `json:"meeting_id" bson:"meeting_id"`
	Text       string    `json:"text" bson:"text"`
	Suggestion string    `json:"suggestion" bson:"suggestion"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
