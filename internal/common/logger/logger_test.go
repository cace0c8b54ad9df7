// internal/common/logger/logger_test.go
package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	l := New("warn", "json")
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		WithFields(map[string]interface{}{"component": "reconciler"}).
		WithError(errors.New("connection refused"))

	log.Warn("sweep failed", map[string]interface{}{"expired": 0})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sweep failed", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "reconciler", ctx["component"])
	assert.Equal(t, "connection refused", ctx["error"])
	assert.EqualValues(t, 0, ctx["expired"])
}

func TestNoOpAndTestLoggers(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNoOpLogger().Info("ignored", nil)
		NewTestLogger(t).Debug("visible in -v", map[string]interface{}{"k": "v"})
	})
}
