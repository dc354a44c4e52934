package infrastructure

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("component", "test").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"component":"test"`)
}

func TestNewLoggerRejectsUnknownFormat(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)

	_, err = newLogger(&bytes.Buffer{}, "loud", "json")
	assert.Error(t, err)
}
