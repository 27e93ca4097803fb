package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()
	fn()
	return buf.String()
}

func TestComponentPrefixAndLevel(t *testing.T) {
	root := NewLogger(LogLevelInfo)
	filter := root.Component("Filter")

	out := captureLog(t, func() {
		filter.Info("loaded %d rows", 3)
		filter.Debug("hidden")
	})
	assert.Equal(t, "[Filter] loaded 3 rows\n", out)

	root.SetLevel(LogLevelDebug)
	assert.True(t, filter.DebugEnabled())
	out = captureLog(t, func() { filter.Debug("key=%s", "y=2000") })
	assert.True(t, strings.HasPrefix(out, "[Filter] DEBUG: key=y=2000"))
}

func TestLogDebugEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_DEBUG", "true")
	assert.Equal(t, LogLevelDebug, NewDefaultLogger().GetLevel())

	t.Setenv("LOG_DEBUG", "")
	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, LogLevelWarn, NewDefaultLogger().GetLevel())
}

func TestConfigureFromLoadedConfig(t *testing.T) {
	l := NewLogger(LogLevelInfo)
	child := l.Component("Server")

	l.Configure("", true)
	assert.Equal(t, LogLevelDebug, l.GetLevel())
	assert.True(t, child.DebugEnabled())

	l.Configure("warn", false)
	assert.Equal(t, LogLevelWarn, child.GetLevel())

	l.Configure("verbose", false)
	assert.Equal(t, LogLevelInfo, l.GetLevel())

	assert.Equal(t, LogLevelError, ParseLogLevel(" error "))
}
