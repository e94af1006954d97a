package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in    string
		slog  slog.Level
		zap   zapcore.Level
		valid bool
	}{
		{"debug", slog.LevelDebug, zapcore.DebugLevel, true},
		{"INFO", slog.LevelInfo, zapcore.InfoLevel, true},
		{"", slog.LevelInfo, zapcore.InfoLevel, true},
		{"warning", slog.LevelWarn, zapcore.WarnLevel, true},
		{"error", slog.LevelError, zapcore.ErrorLevel, true},
		{"verbose", slog.LevelInfo, zapcore.InfoLevel, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			s, z, ok := ParseLevel(tc.in)
			assert.Equal(t, tc.slog, s)
			assert.Equal(t, tc.zap, z)
			assert.Equal(t, tc.valid, ok)
		})
	}
}

func TestInitInstallsDefault(t *testing.T) {
	require.NoError(t, Init("debug", true))
	require.NotNil(t, Zap())
	assert.True(t, Zap().Core().Enabled(zapcore.DebugLevel))

	// must not panic
	Named("test").Debug("hello", "k", "v")
	Nop().Error("dropped")
}
