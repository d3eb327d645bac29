package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLevelGatesEveryMethod(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	l.Debug("d")
	l.Info("i")
	assert.Equal(t, 2, logs.Len())

	l.SetLevel(LevelWarn)
	assert.Equal(t, LevelWarn, l.GetLevel())
	l.Debug("d")
	l.Info("i")
	l.Log(LevelInfo, "i")
	assert.Equal(t, 2, logs.Len())

	l.Warn("w")
	l.Error("e", String("k", "v"))
	require.Equal(t, 4, logs.Len())
	assert.Equal(t, "v", logs.All()[3].ContextMap()["k"])
}

func TestWithSharesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)
	child := l.With(Uint64("object", 7))

	l.SetLevel(LevelError)
	child.Info("hidden")
	child.Error("shown")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, uint64(7), logs.All()[0].ContextMap()["object"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
