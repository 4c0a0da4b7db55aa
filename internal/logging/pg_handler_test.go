package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questchain/questchain-api/internal/models"
	"github.com/questchain/questchain-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeZero() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

func newID() uuid.UUID { return uuid.New() }

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewPGHandler(db)
	defer h.Stop()

	logger := slog.New(h).With("job", "daily_summary")
	logger.Info("ignored")
	logger.Error("notification insert failed", "user_id", "u-1", "error", "disk full", "attempt", 2)
	h.flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "ERROR", logs[0].Level)
	assert.Equal(t, "daily_summary", logs[0].Job)
	assert.Equal(t, "disk full", logs[0].Error)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, "u-1", *logs[0].UserID)
	assert.Contains(t, string(logs[0].Extra), `"attempt"`)
}

func TestPGHandlerEnabledOnlyForErrors(t *testing.T) {
	h := &PGHandler{}
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPurgeLogs(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: newID(), Timestamp: now.AddDate(0, 0, -45), Level: "ERROR", Message: "old"},
		{ID: newID(), Timestamp: now.AddDate(0, 0, -1), Level: "ERROR", Message: "recent"},
	}).Error)

	assert.EqualValues(t, 1, PurgeLogs(db, now))

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)
}
