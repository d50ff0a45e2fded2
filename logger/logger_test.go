package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAdapterFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"workflow": "create_subscription"}).
		WithError(errors.New("boom")).
		Warn("release failed", map[string]interface{}{"key": "k1"})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "release failed", entries[0].Message)
		assert.Equal(t, "create_subscription", ctx["workflow"])
		assert.Equal(t, "k1", ctx["key"])
		assert.Equal(t, "boom", ctx["error"])
	}
}

func TestNewLevels(t *testing.T) {
	assert.True(t, New("debug", "console").Core().Enabled(zap.DebugLevel))
	assert.False(t, New("warn", "json").Core().Enabled(zap.InfoLevel))
	assert.True(t, New("", "json").Core().Enabled(zap.InfoLevel))
}
