package api

import "time"

// CreateMeetingRequest is the payload for creating a meeting. Both fields are
// optional; defaults are applied server side.
type CreateMeetingRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// CreateStyleRequest is the payload for registering an answer style.
type CreateStyleRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// TokenRequest is the payload for issuing a user token.
type TokenRequest struct {
	UserID string `json:"user_id"`
}

// TokenResponse carries an issued JWT.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
