package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

// WeatherSource resolves the current reading for a city.
type WeatherSource interface {
	CurrentReading(ctx context.Context, city string) (*models.WeatherReading, error)
}

// Log is the persisted, bounded log of successful exchanges.
type Log interface {
	Append(ctx context.Context, entry models.ChatLogEntry) error
	List(ctx context.Context) ([]models.ChatLogEntry, error)
}

// SessionStore keeps server-held conversations.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
}

type Service struct {
	orchestrator *Orchestrator
	weather      WeatherSource
	log          Log
	sessions     SessionStore
	historyLimit int
	configured   bool
	logger       *zap.Logger
	now          func() time.Time
}

type ServiceOptions struct {
	HistoryLimit int
	// Configured is false when no assistant key is set; every assistant
	// call then fails with a ConfigError before reaching the network.
	Configured bool
}

func NewService(orchestrator *Orchestrator, weather WeatherSource, log Log, sessions SessionStore, opts ServiceOptions, logger *zap.Logger) *Service {
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Service{
		orchestrator: orchestrator,
		weather:      weather,
		log:          log,
		sessions:     sessions,
		historyLimit: limit,
		configured:   opts.Configured,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) Configured() bool {
	return s.configured
}

func (s *Service) ensureConfigured() error {
	if !s.configured {
		return &apperr.ConfigError{Service: "Gemini API", EnvVar: "GEMINI_API_KEY"}
	}
	return nil
}

// Gemini answers a single message without history. Nothing is logged.
func (s *Service) Gemini(ctx context.Context, message, weatherContext string) (*Reply, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	return s.orchestrator.Send(ctx, message, weatherContext, nil)
}

// Chat answers message with the caller supplied history and appends the
// exchange to the chat log on success.
func (s *Service) Chat(ctx context.Context, message, weatherContext string, history []models.ChatMessage) (*Reply, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}

	reply, err := s.orchestrator.Send(ctx, message, weatherContext, history)
	if err != nil {
		return nil, err
	}

	s.record(ctx, message, reply.Text, weatherContext)
	return reply, nil
}

// History returns the chat log, oldest first.
func (s *Service) History(ctx context.Context) ([]models.ChatLogEntry, error) {
	entries, err := s.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history: %w", err)
	}
	if entries == nil {
		entries = []models.ChatLogEntry{}
	}
	return entries, nil
}

// record appends to the chat log. A failed write is logged and otherwise
// ignored.
func (s *Service) record(ctx context.Context, message, html, weatherContext string) {
	entry := models.ChatLogEntry{
		Timestamp:      s.now().UTC(),
		UserMessage:    message,
		AIResponseHTML: html,
		WeatherContext: weatherContext,
	}
	if err := s.log.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append chat log entry", zap.Error(err))
	}
}

func (s *Service) NewSession(ctx context.Context) (*models.Session, error) {
	now := s.now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		Messages:  SeedHistory(),
		State:     models.StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

func (s *Service) Session(ctx context.Context, id string) (*models.Session, error) {
	return s.sessions.Get(ctx, id)
}

// Converse runs the full weather-aware pipeline for one user message on a
// session. Assistant failures are turned into a friendly reply and the
// session is left in the error state; the returned error is non-nil only
// when the session itself could not be loaded or saved.
func (s *Service) Converse(ctx context.Context, id, message string) (*models.SessionReply, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Messages = AppendHistory(session.Messages, models.ChatMessage{Role: models.RoleUser, Content: message}, s.historyLimit)
	s.transition(session, models.StateAwaitingResponse, "")
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	prompt, weatherContext, city := s.prepare(ctx, message)
	result := &models.SessionReply{
		SessionID:      session.ID,
		City:           city,
		WeatherContext: weatherContext,
	}

	reply, err := s.answer(ctx, prompt, weatherContext, session.Messages)
	if err != nil {
		s.logger.Error("Assistant request failed",
			zap.String("session_id", session.ID),
			zap.Error(err))
		result.Text = FriendlyError(err)
		s.transition(session, models.StateError, err.Error())
	} else {
		result.Text = reply.Text
		result.Model = reply.Model
		result.Fallback = reply.Fallback
		s.transition(session, models.StateRendered, "")
		s.record(ctx, message, reply.Text, weatherContext)
	}

	session.Messages = AppendHistory(session.Messages, models.ChatMessage{Role: models.RoleAssistant, Content: result.Text}, s.historyLimit)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	result.State = session.State
	return result, nil
}

func (s *Service) answer(ctx context.Context, prompt, weatherContext string, history []models.ChatMessage) (*Reply, error) {
	if err := s.ensureConfigured(); err != nil {
		return nil, err
	}
	return s.orchestrator.Send(ctx, prompt, weatherContext, history)
}

// prepare resolves weather context for weather-like messages. When the
// lookup fails the prompt carries the reason instead of a context block.
func (s *Service) prepare(ctx context.Context, message string) (prompt, weatherContext, city string) {
	if !IsWeatherQuery(message) {
		return message, "", ""
	}

	city, ok := ExtractCityName(message)
	if !ok {
		return weatherUnavailableNote(message, errCityNotRecognized.Error()), "", ""
	}

	reading, err := s.weather.CurrentReading(ctx, city)
	if err != nil {
		s.logger.Warn("Weather lookup for chat failed",
			zap.String("city", city),
			zap.Error(err))
		return weatherUnavailableNote(message, WeatherFailure(city, err)), "", city
	}

	return message, FormatWeatherForChat(reading, city), city
}

func (s *Service) transition(session *models.Session, state models.SessionState, lastError string) {
	s.logger.Debug("Session state change",
		zap.String("session_id", session.ID),
		zap.String("from", string(session.State)),
		zap.String("to", string(state)))
	session.State = state
	session.LastError = lastError
	session.UpdatedAt = s.now().UTC()
}
