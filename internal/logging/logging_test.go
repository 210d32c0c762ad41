package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/phuslu/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(Config{Level: "debug", Format: "json"}, &buf)
	assert.Equal(t, log.DebugLevel, logger.Level)

	logger.Info().Str("url", "https://naruto.fandom.com").Int("chunks", 4).Msg("document processed")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "document processed", rec["message"])
	assert.Equal(t, "info", rec["level"])
	assert.EqualValues(t, 4, rec["chunks"])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(Config{Level: "warn", Format: "json"}, &buf)
	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_DefaultLevel(t *testing.T) {
	logger := newLogger(Config{}, &bytes.Buffer{})
	assert.Equal(t, log.InfoLevel, logger.Level)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := Nop()
	assert.Same(t, l, OrNop(l))
}
