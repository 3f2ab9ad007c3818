package api

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/chat"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

type WeatherProvider interface {
	GetCurrentWeather(ctx context.Context, city string) (*models.CurrentWeather, error)
	Configured() bool
	GetLastFetchTime() time.Time
	GetStats() map[string]interface{}
}

type CountryProvider interface {
	GetCountry(ctx context.Context, name string) (*models.CountryLookup, error)
	GetProfile(ctx context.Context, name string) (*models.CountryProfile, error)
	GetStats() map[string]interface{}
}

type ChatService interface {
	Configured() bool
	Gemini(ctx context.Context, message, weatherContext string) (*chat.Reply, error)
	Chat(ctx context.Context, message, weatherContext string, history []models.ChatMessage) (*chat.Reply, error)
	History(ctx context.Context) ([]models.ChatLogEntry, error)
	NewSession(ctx context.Context) (*models.Session, error)
	Session(ctx context.Context, id string) (*models.Session, error)
	Converse(ctx context.Context, id, message string) (*models.SessionReply, error)
}

// WarmUpScheduler runs the background weather warm-up.
type WarmUpScheduler interface {
	GetStatus() map[string]interface{}
	ForceRun() bool
	UpdateCities(cities []string)
}

type Handler struct {
	weather   WeatherProvider
	countries CountryProvider
	chat      ChatService
	scheduler WarmUpScheduler
	port      string
	logger    *zap.Logger
	startTime time.Time
}

// NewHandler wires the HTTP handlers. scheduler may be nil.
func NewHandler(weather WeatherProvider, countries CountryProvider, chatService ChatService, scheduler WarmUpScheduler, port string, logger *zap.Logger) *Handler {
	return &Handler{
		weather:   weather,
		countries: countries,
		chat:      chatService,
		scheduler: scheduler,
		port:      port,
		logger:    logger,
		startTime: time.Now(),
	}
}

// param returns a path parameter with percent-escapes decoded.
func param(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// errorBody builds the {error, details} body. Missing keys get the
// "<service> key not configured" message regardless of fallback.
func errorBody(fallback string, err error) fiber.Map {
	message := fallback
	if apperr.IsConfig(err) {
		message = err.Error()
	}
	return fiber.Map{
		"error":   message,
		"details": apperr.Details(err),
	}
}

// GetWeather handles GET /api/weather/:city
func (h *Handler) GetWeather(c *fiber.Ctx) error {
	city := param(c, "city")
	if city == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "City parameter is required",
		})
	}

	h.logger.Info("Fetching current weather", zap.String("city", city))

	weather, err := h.weather.GetCurrentWeather(c.UserContext(), city)
	if err != nil {
		h.logger.Error("Failed to get current weather",
			zap.String("city", city),
			zap.Error(err))

		return c.Status(apperr.HTTPStatus(err)).JSON(errorBody("Failed to get weather data", err))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(weather.Raw)
}

// RefreshWeather handles POST /api/weather/refresh. An optional
// {"cities": [...]} body replaces the warm-up city list first.
func (h *Handler) RefreshWeather(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Scheduler not available",
		})
	}
	if !h.weather.Configured() {
		err := &apperr.ConfigError{Service: "Weather API", EnvVar: "WEATHER_API_KEY"}
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("Failed to refresh weather data", err))
	}

	var req models.WeatherRefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Invalid request body",
				"details": err.Error(),
			})
		}
	}
	if cities := compactCities(req.Cities); len(cities) > 0 {
		h.scheduler.UpdateCities(cities)
	}

	var previous interface{}
	if last := h.weather.GetLastFetchTime(); !last.IsZero() {
		previous = last
	}

	if !h.scheduler.ForceRun() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Weather refresh not available",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":              "refresh started",
		"cities":              h.scheduler.GetStatus()["cities"],
		"previous_fetch_time": previous,
	})
}

func compactCities(cities []string) []string {
	out := make([]string, 0, len(cities))
	for _, city := range cities {
		if city = strings.TrimSpace(city); city != "" {
			out = append(out, city)
		}
	}
	return out
}

// PostGemini handles POST /api/gemini
func (h *Handler) PostGemini(c *fiber.Ctx) error {
	var req models.GeminiRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	h.logger.Info("Received Gemini request", zap.String("message", preview(req.Message)))

	reply, err := h.chat.Gemini(c.UserContext(), req.Message, req.WeatherContext)
	if err != nil {
		h.logger.Error("Gemini request failed", zap.Error(err))
		return c.Status(apperr.HTTPStatus(err)).JSON(errorBody("Failed to get response from AI service", err))
	}

	return c.JSON(models.AssistantResponse{Text: reply.Text, Model: reply.Model})
}

// PostChat handles POST /api/chat
func (h *Handler) PostChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
			"success": false,
		})
	}

	message := req.UserMessage()
	if message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Message is required",
			"success": false,
		})
	}

	h.logger.Info("Received chat request",
		zap.String("message", preview(message)),
		zap.Int("history", len(req.Messages)))

	reply, err := h.chat.Chat(c.UserContext(), message, req.WeatherContext, req.Messages)
	if err != nil {
		h.logger.Error("Chat request failed", zap.Error(err))
		body := errorBody("Failed to get response from AI service", err)
		body["success"] = false
		return c.Status(apperr.HTTPStatus(err)).JSON(body)
	}

	success := true
	return c.JSON(models.AssistantResponse{Text: reply.Text, Model: reply.Model, Success: &success})
}

// GetChatHistory handles GET /api/chat-history
func (h *Handler) GetChatHistory(c *fiber.Ctx) error {
	entries, err := h.chat.History(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to read chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("Failed to read chat history", err))
	}

	return c.JSON(entries)
}

// GetCountry handles GET /api/country/:name
func (h *Handler) GetCountry(c *fiber.Ctx) error {
	name := param(c, "name")

	h.logger.Info("Fetching country data", zap.String("name", name))

	lookup, err := h.countries.GetCountry(c.UserContext(), name)
	if err != nil {
		h.logger.Error("Failed to get country data",
			zap.String("name", name),
			zap.Error(err))
		return c.Status(apperr.HTTPStatus(err)).JSON(errorBody("Failed to get country data", err))
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(lookup.Raw)
}

// GetProfile handles GET /api/profile/:country
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	name := param(c, "country")

	profile, err := h.countries.GetProfile(c.UserContext(), name)
	if err != nil {
		h.logger.Error("Failed to build country profile",
			zap.String("name", name),
			zap.Error(err))
		return c.Status(apperr.HTTPStatus(err)).JSON(errorBody("Failed to get country data", err))
	}

	return c.JSON(profile)
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(c *fiber.Ctx) error {
	session, err := h.chat.NewSession(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody("Failed to create session", err))
	}

	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetSession handles GET /api/sessions/:id
func (h *Handler) GetSession(c *fiber.Ctx) error {
	session, err := h.chat.Session(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.sessionError(c, err)
	}

	return c.JSON(session)
}

// PostSessionMessage handles POST /api/sessions/:id/messages
func (h *Handler) PostSessionMessage(c *fiber.Ctx) error {
	var req models.SessionMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	reply, err := h.chat.Converse(c.UserContext(), c.Params("id"), req.Message)
	if err != nil {
		return h.sessionError(c, err)
	}

	return c.JSON(reply)
}

func (h *Handler) sessionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, apperr.ErrSessionNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	h.logger.Error("Session request failed",
		zap.String("session_id", c.Params("id")),
		zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody("Session request failed", err))
}

// GetHealth handles GET /api/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"services": fiber.Map{
			"assistantConfigured": h.chat.Configured(),
			"weatherConfigured":   h.weather.Configured(),
			"port":                h.port,
		},
	})
}

// GetMetrics handles GET /api/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	metrics := fiber.Map{
		"uptime":    time.Since(h.startTime).String(),
		"weather":   h.weather.GetStats(),
		"countries": h.countries.GetStats(),
	}
	if h.scheduler != nil {
		metrics["scheduler"] = h.scheduler.GetStatus()
	}

	return c.JSON(fiber.Map{
		"metrics":   metrics,
		"timestamp": time.Now().UTC(),
	})
}

func preview(message string) string {
	runes := []rune(message)
	if len(runes) <= 50 {
		return message
	}
	return string(runes[:50]) + "..."
}
