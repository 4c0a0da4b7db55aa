package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ calls int }

func (f *failingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (f *failingHandler) Handle(context.Context, slog.Record) error {
	f.calls++
	return errors.New("sink down")
}
func (f *failingHandler) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f *failingHandler) WithGroup(string) slog.Handler      { return f }

func TestMultiHandlerFansOut(t *testing.T) {
	var info, errOnly bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("job", "evening_reminder")

	logger.Info("started")
	logger.Error("failed", "error", "boom")

	assert.Contains(t, info.String(), `"msg":"started"`)
	assert.Contains(t, info.String(), `"msg":"failed"`)
	assert.NotContains(t, errOnly.String(), `"msg":"started"`)
	assert.Contains(t, errOnly.String(), `"job":"evening_reminder"`)
}

func TestMultiHandlerKeepsDeliveringAfterFailure(t *testing.T) {
	var out bytes.Buffer
	bad := &failingHandler{}
	h := NewMultiHandler(bad, slog.NewJSONHandler(&out, nil))

	err := h.Handle(context.Background(), slog.NewRecord(timeZero(), slog.LevelWarn, "warned", 0))
	require.Error(t, err)
	assert.Equal(t, 1, bad.calls)
	assert.Contains(t, out.String(), "warned")
}

func TestMultiHandlerEnabled(t *testing.T) {
	h := NewMultiHandler(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
