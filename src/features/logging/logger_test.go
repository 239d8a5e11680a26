package logging

import (
	"bytes"
	"testing"

	"github.com/contre95/sigwatch/src/features/config"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_DefaultLevelHidesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.Logger{Level: "warn", Format: "text"})

	logger.Info("Triggering command", "cmd", "make")
	require.Empty(t, buf.String())

	logger.Warn("something odd")
	require.Contains(t, buf.String(), "something odd")
	require.Contains(t, buf.String(), Prefix)
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.Logger{Level: "info", Format: "json"})

	logger.Info("Triggering command", "cmd", "make")
	require.Contains(t, buf.String(), `"msg":"Triggering command"`)
	require.Contains(t, buf.String(), `"cmd":"make"`)
}
