package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

const chatLogKey = "chat:log"

// RedisChatLog keeps the chat log in a capped Redis list.
type RedisChatLog struct {
	client     *redis.Client
	maxEntries int
	logger     *zap.Logger
}

func NewRedisChatLog(client *redis.Client, maxEntries int, logger *zap.Logger) *RedisChatLog {
	if maxEntries <= 0 {
		maxEntries = DefaultChatLogMaxEntries
	}
	return &RedisChatLog{
		client:     client,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

func (l *RedisChatLog) Append(ctx context.Context, entry models.ChatLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode chat log entry: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, chatLogKey, data)
	pipe.LTrim(ctx, chatLogKey, int64(-l.maxEntries), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append chat log entry: %w", err)
	}
	return nil
}

func (l *RedisChatLog) List(ctx context.Context) ([]models.ChatLogEntry, error) {
	raw, err := l.client.LRange(ctx, chatLogKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log: %w", err)
	}

	entries := make([]models.ChatLogEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.ChatLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			l.logger.Warn("Skipping malformed chat log entry", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
