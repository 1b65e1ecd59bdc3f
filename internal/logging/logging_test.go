package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New(true, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(false, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestWithDelegate(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithDelegate(zap.New(core), "  gemini ", "gemini-2.5-flash").Info("call")
	WithDelegate(zap.New(core), "", "  ").Info("bare")

	entries := observed.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "gemini", entries[0].ContextMap()[FieldProvider])
	assert.Equal(t, "gemini-2.5-flash", entries[0].ContextMap()[FieldModel])
	assert.Empty(t, entries[1].ContextMap())

	// nil falls back to a no-op logger
	assert.NotPanics(t, func() { WithDelegate(nil, "openai", "gpt-4o").Info("dropped") })
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{"returns empty when limit non-positive", "hello world", 0, ""},
		{"shorter than limit", "hello", 10, "hello"},
		{"truncates and adds ellipsis", "hello world", 5, "hello..."},
		{"trims surrounding whitespace", "  spaced  ", 5, "space..."},
		{"counts runes", "résumé", 3, "rés..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, TruncateForLog(tt.input, tt.limit))
		})
	}
}
