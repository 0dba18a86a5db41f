package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Configure(logrus.New(), &buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.WithField("seq", 3).Warn("tick failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tick failed", entry["msg"])
	assert.Equal(t, float64(3), entry["seq"])
}

func TestConfigureRejectsUnknownValues(t *testing.T) {
	_, err := Configure(logrus.New(), &bytes.Buffer{}, "loud", "text")
	assert.Error(t, err)

	_, err = Configure(logrus.New(), &bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}
