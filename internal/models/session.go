package models

import "time"

// SessionState tracks where a chat session is in its request cycle.
type SessionState string

const (
	StateIdle             SessionState = "idle"
	StateAwaitingResponse SessionState = "awaiting_response"
	StateRendered         SessionState = "rendered"
	StateError            SessionState = "error"
)

// Session is a server-held conversation.
type Session struct {
	ID        string        `json:"id"`
	Messages  []ChatMessage `json:"messages"`
	State     SessionState  `json:"state"`
	LastError string        `json:"last_error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SessionReply is the body returned by POST /api/sessions/:id/messages.
type SessionReply struct {
	SessionID      string       `json:"session_id"`
	State          SessionState `json:"state"`
	Text           string       `json:"text"`
	Model          string       `json:"model,omitempty"`
	City           string       `json:"city,omitempty"`
	WeatherContext string       `json:"weather_context,omitempty"`
	Fallback       bool         `json:"fallback"`
}
