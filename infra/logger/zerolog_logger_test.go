package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "scheduler", zerolog.DebugLevel)
	l.Debugw("issue scheduled", map[string]any{"key": "A", "slot": 1})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scheduler", line["component"])
	assert.Equal(t, "A", line["key"])
	assert.Equal(t, "issue scheduled", line["message"])

	buf.Reset()
	quiet := NewZerologLoggerTo(&buf, "scheduler", zerolog.WarnLevel)
	quiet.Infof("dropped")
	quiet.Warnf("kept")
	assert.False(t, strings.Contains(buf.String(), "dropped"))
	assert.True(t, strings.Contains(buf.String(), "kept"))
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	assert.Equal(t, zerolog.DebugLevel, levelFromEnv())
	t.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, levelFromEnv())
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, zerolog.InfoLevel, levelFromEnv())
}
