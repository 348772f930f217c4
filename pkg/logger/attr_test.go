package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
)

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestBatch(t *testing.T) {
	attr := logger.Batch(2, 10, 4000)
	require.Equal(t, "batch", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())

	g := attr.Value.Group()
	require.Len(t, g, 3)
	assert.Equal(t, "index", g[0].Key)
	assert.Equal(t, int64(2), g[0].Value.Int64())
	assert.Equal(t, int64(4000), g[2].Value.Int64())
}

func TestScalarAttrs(t *testing.T) {
	assert.Equal(t, "chat_id", logger.ChatID("abc").Key)
	assert.Equal(t, "model", logger.Model("m").Key)
	assert.Equal(t, "slot", logger.Slot("lesson").Key)
	assert.Equal(t, "hint_type", logger.HintType("hint_sequence").Key)
	assert.Equal(t, "component", logger.Component("embedding").Key)
	assert.Equal(t, int64(3), logger.Attempt(3).Value.Int64())
	assert.Equal(t, int64(7), logger.Count(7).Value.Int64())
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
}
