package chat

import "github.com/bobby-s-dev/weather-assistant/internal/models"

const (
	DefaultHistoryLimit = 10

	defaultSystemPrompt = "Kamu adalah asisten AI cuaca yang ramah dan informatif"
	defaultGreeting     = "Halo! Saya adalah asisten AI cuaca. Tanyakan informasi cuaca di negara mana pun di dunia!"
)

// AppendHistory appends msg and trims the history to the leading system
// entry (if any) plus the most recent limit entries. The input slice is not
// modified.
func AppendHistory(history []models.ChatMessage, msg models.ChatMessage, limit int) []models.ChatMessage {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	out := make([]models.ChatMessage, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, msg)

	hasSystem := len(out) > 0 && out[0].Role == models.RoleSystem
	if !hasSystem {
		if len(out) > limit {
			out = out[len(out)-limit:]
		}
		return out
	}

	if len(out) > limit+1 {
		trimmed := make([]models.ChatMessage, 0, limit+1)
		trimmed = append(trimmed, out[0])
		trimmed = append(trimmed, out[len(out)-limit:]...)
		out = trimmed
	}
	return out
}

// SeedHistory returns the opening history of a new conversation.
func SeedHistory() []models.ChatMessage {
	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: defaultSystemPrompt},
		{Role: models.RoleAssistant, Content: defaultGreeting},
	}
}
