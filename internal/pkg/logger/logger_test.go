package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	require.Equal(t, zapcore.ErrorLevel, ParseLevel(" error "))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestGlobalHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetGlobal(zap.New(core))
	t.Cleanup(func() { SetGlobal(nil) })

	Debug("hidden %d", 1)
	Info("report %s submitted", "ABC123")
	Warn("slow store")

	require.Equal(t, 2, logs.Len())
	require.Equal(t, "report ABC123 submitted", logs.All()[0].Message)
}

func TestNew(t *testing.T) {
	l, err := New("production", "warn")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
