package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

const geminiService = "Gemini API"

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// MaxConcurrent bounds in-flight generation calls across every model
	// sharing the client.
	MaxConcurrent int
}

// GeminiClient completes prompts against one Gemini model. Clients derived
// with WithModel share the underlying connection and concurrency slots.
type GeminiClient struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	rateChan chan struct{}
	logger   *zap.Logger
}

// NewGeminiClient returns a client that fails every call with a ConfigError
// when cfg.APIKey is empty.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	slots := cfg.MaxConcurrent
	if slots <= 0 {
		slots = 4
	}
	rateChan := make(chan struct{}, slots)
	for i := 0; i < slots; i++ {
		rateChan <- struct{}{}
	}

	c := &GeminiClient{
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		rateChan: rateChan,
		logger:   logger,
	}
	if cfg.APIKey == "" {
		logger.Warn("Gemini API key is not configured")
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// WithModel returns a client for another model on the same connection.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	clone := *c
	clone.model = model
	return &clone
}

func (c *GeminiClient) Name() string {
	return c.model
}

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *GeminiClient) releaseRate() {
	c.rateChan <- struct{}{}
}

// Complete sends the prompt as a single generation call, or as the next
// turn of a chat when the prompt carries history.
func (c *GeminiClient) Complete(ctx context.Context, prompt models.AssistantPrompt) (string, error) {
	if c.client == nil {
		return "", &apperr.ConfigError{Service: geminiService, EnvVar: "GEMINI_API_KEY"}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.acquireRate(ctx); err != nil {
		return "", mapGeminiError(err)
	}
	defer c.releaseRate()

	model := c.client.GenerativeModel(c.model)
	if prompt.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(prompt.SystemInstruction)},
		}
	}

	start := time.Now()
	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if history := toGeminiHistory(prompt.History); len(history) > 0 {
		cs := model.StartChat()
		cs.History = history
		resp, err = cs.SendMessage(ctx, genai.Text(prompt.Message))
	} else {
		resp, err = model.GenerateContent(ctx, genai.Text(prompt.Message))
	}
	if err != nil {
		c.logger.Warn("Gemini request failed",
			zap.String("model", c.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", mapGeminiError(err)
	}

	text := extractText(resp)
	c.logger.Debug("Gemini request completed",
		zap.String("model", c.model),
		zap.Int("history", len(prompt.History)),
		zap.Int("response_size", len(text)),
		zap.Duration("elapsed", time.Since(start)))

	return text, nil
}

// toGeminiHistory converts chat history to Gemini turns. System entries are
// dropped, the history must open with a user turn, consecutive turns of the
// same role are merged, and a trailing user turn is dropped because the
// current message is sent on its own.
func toGeminiHistory(history []models.ChatMessage) []*genai.Content {
	var out []*genai.Content
	for _, msg := range history {
		var role string
		switch msg.Role {
		case models.RoleUser:
			role = "user"
		case models.RoleAssistant:
			role = "model"
		default:
			continue
		}
		if len(out) == 0 && role != "user" {
			continue
		}

		if last := len(out) - 1; last >= 0 && out[last].Role == role {
			out[last].Parts = append(out[last].Parts, genai.Text(msg.Content))
			continue
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}

	if n := len(out); n > 0 && out[n-1].Role == "user" {
		out = out[:n-1]
	}
	return out
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

// mapGeminiError keeps the HTTP status of API failures so callers can tell
// an overloaded model (503, 429) from a bad request.
func mapGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &apperr.UpstreamError{Service: geminiService, Status: gerr.Code, Message: gerr.Message, Err: err}
	}

	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && coded.HTTPCode() > 0 {
		return &apperr.UpstreamError{Service: geminiService, Status: coded.HTTPCode(), Message: err.Error(), Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &apperr.UpstreamError{Service: geminiService, Status: http.StatusGatewayTimeout, Message: "request timed out", Err: err}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &apperr.UpstreamError{Service: geminiService, Status: http.StatusBadRequest, Message: blocked.Error(), Err: err}
	}

	return &apperr.UpstreamError{Service: geminiService, Err: err}
}
