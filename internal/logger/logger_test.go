package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, tt := range []struct {
		name  string
		json  bool
		debug bool
	}{
		{"console info", false, false},
		{"json debug", true, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.json, tt.debug)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "hello", TruncateForLog("  hello  ", 10))
	assert.Equal(t, "hel...", TruncateForLog("hello", 3))
	assert.Equal(t, "résu...", TruncateForLog("résumé", 4))
	assert.Equal(t, "", TruncateForLog("hello", 0))
}

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	require.Len(t, fields, 1)
	assert.Equal(t, "provider", fields[0].Key)
	assert.Equal(t, "Gemini", fields[0].String)
	assert.Empty(t, StringFields())
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	l := zap.New(core)

	WithFields(l, zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bar", entries[0].ContextMap()["foo"])

	fallback := WithFields(nil, zap.String("baz", "qux"))
	require.NotNil(t, fallback)
	assert.NotPanics(t, func() { fallback.Info("another log") })
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "model-x").Info("test log")

	entries := observed.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "gemini", ctx[FieldProvider])
	assert.Equal(t, "model-x", ctx[FieldModel])

	assert.Empty(t, CommonFields("", ""))
}
