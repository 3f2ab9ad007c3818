package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

// DefaultChatLogMaxEntries bounds the chat log; the oldest entries go first.
const DefaultChatLogMaxEntries = 100

var errCorruptChatLog = errors.New("chat log is not a JSON array")

// FileChatLog keeps the chat log as a pretty-printed JSON array on disk.
// Writes are read-modify-write under a mutex; a crash between the two can
// lose the latest append.
type FileChatLog struct {
	mu         sync.Mutex
	path       string
	maxEntries int
	logger     *zap.Logger
}

// NewFileChatLog creates the log file with an empty array when it does not
// exist yet.
func NewFileChatLog(path string, maxEntries int, logger *zap.Logger) (*FileChatLog, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultChatLogMaxEntries
	}

	l := &FileChatLog{
		path:       path,
		maxEntries: maxEntries,
		logger:     logger,
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create chat log directory: %w", err)
			}
		}
		if err := l.write([]models.ChatLogEntry{}); err != nil {
			return nil, err
		}
		logger.Info("Chat log initialized", zap.String("path", path))
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat chat log: %w", err)
	}

	return l, nil
}

func (l *FileChatLog) Append(_ context.Context, entry models.ChatLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		entries = nil
	case errors.Is(err, errCorruptChatLog):
		// The corrupt file is kept next to the new log.
		backup := l.path + ".bak"
		if renameErr := os.Rename(l.path, backup); renameErr != nil {
			return fmt.Errorf("failed to back up corrupt chat log: %w", renameErr)
		}
		l.logger.Warn("Chat log corrupt, moved aside and starting a new one",
			zap.String("path", l.path),
			zap.String("backup", backup),
			zap.Error(err))
		entries = nil
	default:
		return fmt.Errorf("failed to read chat log: %w", err)
	}

	entries = append(entries, entry)
	if len(entries) > l.maxEntries {
		entries = entries[len(entries)-l.maxEntries:]
	}

	return l.write(entries)
}

func (l *FileChatLog) List(_ context.Context) ([]models.ChatLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if errors.Is(err, os.ErrNotExist) {
		return []models.ChatLogEntry{}, nil
	}
	return entries, err
}

func (l *FileChatLog) read() ([]models.ChatLogEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	var entries []models.ChatLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptChatLog, err)
	}
	if entries == nil {
		entries = []models.ChatLogEntry{}
	}
	return entries, nil
}

func (l *FileChatLog) write(entries []models.ChatLogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chat log: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chat log: %w", err)
	}
	return nil
}
