package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-assistant/internal/models"
)

func TestNewFileChatLogCreatesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat_history.json")

	_, err := NewFileChatLog(path, 0, zap.NewNop())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestFileChatLogAppendAndList(t *testing.T) {
	ctx := context.Background()
	log, err := NewFileChatLog(filepath.Join(t.TempDir(), "chat_history.json"), 0, zap.NewNop())
	require.NoError(t, err)

	entries, err := log.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entry := models.ChatLogEntry{
		Timestamp:      time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		UserMessage:    "cuaca di Jakarta",
		AIResponseHTML: "<strong>Cerah</strong>",
		WeatherContext: "Data Cuaca untuk Jakarta, ID:",
	}
	require.NoError(t, log.Append(ctx, entry))

	entries, err = log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestFileChatLogIsBounded(t *testing.T) {
	ctx := context.Background()
	log, err := NewFileChatLog(filepath.Join(t.TempDir(), "chat_history.json"), DefaultChatLogMaxEntries, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 105; i++ {
		require.NoError(t, log.Append(ctx, models.ChatLogEntry{UserMessage: fmt.Sprintf("m%d", i)}))
	}

	entries, err := log.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 100)
	assert.Equal(t, "m5", entries[0].UserMessage)
	assert.Equal(t, "m104", entries[99].UserMessage)
}

func TestFileChatLogKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	existing := `[{"timestamp":"2024-05-01T08:00:00Z","userMessage":"halo","aiResponse":"hai"}]`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o644))

	log, err := NewFileChatLog(path, 0, zap.NewNop())
	require.NoError(t, err)

	entries, err := log.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hai", entries[0].AIResponseHTML)
}

func TestFileChatLogBacksUpCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	log, err := NewFileChatLog(path, 0, zap.NewNop())
	require.NoError(t, err)

	_, err = log.List(context.Background())
	assert.ErrorIs(t, err, errCorruptChatLog)

	require.NoError(t, log.Append(context.Background(), models.ChatLogEntry{UserMessage: "halo"}))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))

	entries, err := log.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "halo", entries[0].UserMessage)
}

func TestFileChatLogAppendRecreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	log, err := NewFileChatLog(path, 0, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	require.NoError(t, log.Append(context.Background(), models.ChatLogEntry{UserMessage: "halo"}))

	entries, err := log.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	_, err = os.Stat(path + ".bak")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
