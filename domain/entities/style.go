package entities

import "errors"

// DefaultStylePrompt is applied when a session has no answer style selected
// or the selected style no longer exists.
const DefaultStylePrompt = "You are a helpful meeting assistant. Suggest a concise, professional reply the user could give next."

// AnswerStyle is a named system prompt that shapes generated reply
// suggestions.
type AnswerStyle struct {
	ID     string `json:"id" bson:"_id,omitempty"`
	Name   string `json:"name" bson:"name"`
	Prompt string `json:"prompt" bson:"prompt"`
}

// Validate validates the answer style data.
func (s *AnswerStyle) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Prompt == "" {
		return errors.New("prompt is required")
	}
	return nil
}
