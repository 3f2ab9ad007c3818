package chat

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

type fakeEndpoint struct {
	name    string
	text    string
	err     error
	prompts []models.AssistantPrompt
}

func (f *fakeEndpoint) Name() string { return f.name }

func (f *fakeEndpoint) Complete(_ context.Context, prompt models.AssistantPrompt) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func sampleHistory() []models.ChatMessage {
	return append(SeedHistory(), models.ChatMessage{Role: models.RoleUser, Content: "halo"})
}

func TestOrchestratorPrimarySuccess(t *testing.T) {
	primary := &fakeEndpoint{name: "primary", text: "**Cerah**"}
	fallback := &fakeEndpoint{name: "fallback", text: "unused"}
	o := NewOrchestrator(primary, fallback, zap.NewNop())

	reply, err := o.Send(context.Background(), "halo", "", sampleHistory())
	require.NoError(t, err)

	assert.Equal(t, "<strong>Cerah</strong>", reply.Text)
	assert.Equal(t, "primary", reply.Model)
	assert.False(t, reply.Fallback)
	assert.Len(t, primary.prompts, 1)
	assert.Len(t, primary.prompts[0].History, 3)
	assert.Empty(t, fallback.prompts)
}

func TestOrchestratorFallsBackOnceWithoutHistory(t *testing.T) {
	primary := &fakeEndpoint{name: "primary", err: &apperr.UpstreamError{Service: "Gemini API", Status: http.StatusServiceUnavailable}}
	fallback := &fakeEndpoint{name: "fallback", text: "ok"}
	o := NewOrchestrator(primary, fallback, zap.NewNop())

	reply, err := o.Send(context.Background(), "halo", "ctx", sampleHistory())
	require.NoError(t, err)

	assert.Equal(t, "ok", reply.Text)
	assert.Equal(t, "fallback", reply.Model)
	assert.True(t, reply.Fallback)
	require.Len(t, fallback.prompts, 1)
	assert.Nil(t, fallback.prompts[0].History)
	assert.Equal(t, primary.prompts[0].Message, fallback.prompts[0].Message)
	assert.Equal(t, weatherPersona, fallback.prompts[0].SystemInstruction)
}

func TestOrchestratorPropagatesFallbackError(t *testing.T) {
	primaryErr := &apperr.UpstreamError{Service: "Gemini API", Status: http.StatusInternalServerError}
	fallbackErr := &apperr.UpstreamError{Service: "Gemini API", Status: http.StatusTooManyRequests}
	primary := &fakeEndpoint{name: "primary", err: primaryErr}
	fallback := &fakeEndpoint{name: "fallback", err: fallbackErr}
	o := NewOrchestrator(primary, fallback, zap.NewNop())

	_, err := o.Send(context.Background(), "halo", "", nil)

	assert.Same(t, fallbackErr, err)
	assert.Len(t, primary.prompts, 1)
	assert.Len(t, fallback.prompts, 1)
}

func TestOrchestratorEmptyReplyTriggersFallback(t *testing.T) {
	primary := &fakeEndpoint{name: "primary", text: "   "}
	fallback := &fakeEndpoint{name: "fallback", text: ""}
	o := NewOrchestrator(primary, fallback, zap.NewNop())

	_, err := o.Send(context.Background(), "halo", "", nil)

	var parseErr *apperr.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "fallback", parseErr.Service)
	assert.Len(t, fallback.prompts, 1)
}

func TestOrchestratorConfigErrorSkipsFallback(t *testing.T) {
	primary := &fakeEndpoint{name: "primary", err: &apperr.ConfigError{Service: "Gemini API", EnvVar: "GEMINI_API_KEY"}}
	fallback := &fakeEndpoint{name: "fallback", text: "ok"}
	o := NewOrchestrator(primary, fallback, zap.NewNop())

	_, err := o.Send(context.Background(), "halo", "", nil)

	assert.True(t, apperr.IsConfig(err))
	assert.Empty(t, fallback.prompts)
}

func TestOrchestratorWithoutFallback(t *testing.T) {
	primaryErr := &apperr.UpstreamError{Service: "Gemini API", Status: http.StatusBadGateway}
	o := NewOrchestrator(&fakeEndpoint{name: "primary", err: primaryErr}, nil, zap.NewNop())

	_, err := o.Send(context.Background(), "halo", "", nil)
	assert.Same(t, primaryErr, err)
}

func TestBuildPrompt(t *testing.T) {
	plain := BuildPrompt("halo", "")
	assert.Equal(t, "halo", plain.Message)
	assert.Empty(t, plain.SystemInstruction)

	wrapped := BuildPrompt("cuaca di Jakarta?", "Data Cuaca untuk Jakarta, ID:")
	assert.Equal(t, "Pertanyaan pengguna: \"cuaca di Jakarta?\"\n\nData cuaca relevan:\nData Cuaca untuk Jakarta, ID:", wrapped.Message)
	assert.Equal(t, weatherPersona, wrapped.SystemInstruction)
}
