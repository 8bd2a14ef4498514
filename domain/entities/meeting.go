package entities

import (
	"errors"
	"fmt"
	"time"
)

// DefaultLanguage is used when a meeting is created without an explicit
// language code.
const DefaultLanguage = "en-US"

// Meeting represents one meeting that transcription sessions attach to.
type Meeting struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Language  string    `json:"language" bson:"language"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewMeeting creates a meeting with defaults applied for missing fields.
func NewMeeting(title, language string) *Meeting {
	now := time.Now()
	if language == "" {
		language = DefaultLanguage
	}
	if title == "" {
		title = fmt.Sprintf("Meeting on %s", now.Format("2006-01-02"))
	}
	return &Meeting{
		Title:     title,
		Language:  language,
		CreatedAt: now,
	}
}

// Validate validates the meeting data.
func (m *Meeting) Validate() error {
	if m.Title == "" {
		return errors.New("title is required")
	}
	if m.Language == "" {
		return errors.New("language is required")
	}
	return nil
}
