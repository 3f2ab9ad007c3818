package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/apperr"
	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

// MemorySessionStore keeps sessions in process. Sessions idle for longer
// than ttl are dropped by Prune.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	ttl      time.Duration
	logger   *zap.Logger
}

func NewMemorySessionStore(ttl time.Duration, logger *zap.Logger) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.expired(session, time.Now()) {
		return nil, apperr.ErrSessionNotFound
	}

	session.Messages = append([]models.ChatMessage(nil), session.Messages...)
	return &session, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.Session) error {
	stored := *session
	stored.Messages = append([]models.ChatMessage(nil), session.Messages...)

	s.mu.Lock()
	s.sessions[session.ID] = stored
	s.mu.Unlock()
	return nil
}

// Prune removes expired sessions and returns how many were dropped.
func (s *MemorySessionStore) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.Debug("Pruned expired sessions", zap.Int("count", removed))
	}
	return removed, nil
}

func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemorySessionStore) expired(session models.Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(session.UpdatedAt) > s.ttl
}
