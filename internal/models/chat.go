package models

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatLogEntry is one persisted assistant exchange. JSON keys match the
// chat_history.json files written by earlier versions of the service.
type ChatLogEntry struct {
	Timestamp      time.Time `json:"timestamp"`
	UserMessage    string    `json:"userMessage"`
	AIResponseHTML string    `json:"aiResponse"`
	WeatherContext string    `json:"weatherContext,omitempty"`
}

// AssistantPrompt is what an assistant endpoint is asked to complete.
type AssistantPrompt struct {
	SystemInstruction string
	Message           string
	History           []ChatMessage
}

// GeminiRequest is the body of POST /api/gemini.
type GeminiRequest struct {
	Message        string `json:"message"`
	WeatherContext string `json:"weatherContext"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string        `json:"message"`
	WeatherContext string        `json:"weatherContext"`
	Messages       []ChatMessage `json:"messages"`
}

// UserMessage returns Message, or the content of the last user entry in
// Messages when Message is empty.
func (r *ChatRequest) UserMessage() string {
	if r.Message != "" {
		return r.Message
	}
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}

// AssistantResponse is the success body of /api/gemini and /api/chat.
type AssistantResponse struct {
	Text    string `json:"text"`
	Model   string `json:"model"`
	Success *bool  `json:"success,omitempty"`
}

// SessionMessageRequest is the body of POST /api/sessions/:id/messages.
type SessionMessageRequest struct {
	Message string `json:"message"`
}
