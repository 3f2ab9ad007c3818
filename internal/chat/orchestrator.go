package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

const weatherPersona = `Kamu adalah asisten AI cuaca yang berperan menjelaskan informasi cuaca harian secara menarik, rapi, dan profesional.

Tugasmu:
- Gunakan gaya bahasa santai, friendly, dan mudah dipahami.
- Format jawaban agar rapi:
  - Gunakan **bold** untuk istilah penting atau highlight data utama (contoh: **Suhu: 26°C**).
  - Gunakan *italic* bila ingin menekankan kata tertentu (contoh: *agak gerah*).
  - Gunakan bullet point untuk data-data spesifik (contoh: "* **Suhu:** 25°C").
  - Pisahkan penjelasan menjadi paragraf pendek agar enak dibaca (gunakan baris baru).
- Tambahkan konteks dari data cuaca jika ada.
- Gunakan emoji ringan dan relevan (tanpa berlebihan), misal ☀️🌧️💨🔥❄️.
- Gunakan bahasa Indonesia yang gaul tapi sopan, mirip gaya asisten AI friendly (contoh: "Santai, bro! Nih aku bantu...").
- Akhiri dengan saran atau kesimpulan singkat kalau konteksnya memungkinkan.
- Jaga supaya tetap faktual berdasarkan data cuaca, tapi bisa memberi sedikit interpretasi ringan (contoh: "kelihatannya bakal mendung lagi nih, bro").
- Jangan menjawab hal di luar topik cuaca atau permintaan pengguna.`

// Endpoint is one assistant backend able to complete a prompt.
type Endpoint interface {
	Name() string
	Complete(ctx context.Context, prompt models.AssistantPrompt) (string, error)
}

// Reply is a completed assistant answer, already converted to HTML.
type Reply struct {
	Text     string
	Model    string
	Fallback bool
}

type Orchestrator struct {
	primary  Endpoint
	fallback Endpoint
	logger   *zap.Logger
}

// NewOrchestrator wires a primary endpoint and an optional fallback. The
// fallback is tried once, without history, when the primary fails.
func NewOrchestrator(primary, fallback Endpoint, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// BuildPrompt wraps message with the weather persona and context block when
// weatherContext is non-empty; otherwise the raw message is used as is.
func BuildPrompt(message, weatherContext string) models.AssistantPrompt {
	if weatherContext == "" {
		return models.AssistantPrompt{Message: message}
	}

	return models.AssistantPrompt{
		SystemInstruction: weatherPersona,
		Message:           fmt.Sprintf("Pertanyaan pengguna: \"%s\"\n\nData cuaca relevan:\n%s", message, weatherContext),
	}
}

// Send asks the primary endpoint (with history) and falls back exactly once
// to the secondary endpoint (without history). The reply text is beautified.
func (o *Orchestrator) Send(ctx context.Context, message, weatherContext string, history []models.ChatMessage) (*Reply, error) {
	prompt := BuildPrompt(message, weatherContext)
	prompt.History = history

	text, err := complete(ctx, o.primary, prompt)
	if err == nil {
		return &Reply{Text: Beautify(text), Model: o.primary.Name()}, nil
	}

	if o.fallback == nil || apperr.IsConfig(err) {
		return nil, err
	}

	o.logger.Warn("Primary assistant endpoint failed, falling back",
		zap.String("primary", o.primary.Name()),
		zap.String("fallback", o.fallback.Name()),
		zap.Error(err))

	prompt.History = nil
	text, err = complete(ctx, o.fallback, prompt)
	if err != nil {
		o.logger.Error("Fallback assistant endpoint failed",
			zap.String("fallback", o.fallback.Name()),
			zap.Error(err))
		return nil, err
	}

	return &Reply{Text: Beautify(text), Model: o.fallback.Name(), Fallback: true}, nil
}

func complete(ctx context.Context, endpoint Endpoint, prompt models.AssistantPrompt) (string, error) {
	text, err := endpoint.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &apperr.ParseError{Service: endpoint.Name(), Field: "text"}
	}
	return text, nil
}
