package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("info", "json", &buf).Info("training started")
		assert.Contains(t, buf.String(), `"msg":"training started"`)
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		newLogger("info", "text", &buf).Info("training started")
		assert.Contains(t, buf.String(), "msg=")
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("error", "text", &buf)
		logger.Info("quiet")
		assert.Empty(t, buf.String())
		logger.Error("loud")
		assert.Contains(t, buf.String(), "loud")
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("loud", "text", &buf)
		logger.Debug("hidden")
		assert.Empty(t, buf.String())
		logger.Info("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}
