package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KevinKickass/OpenIOLink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openiolink.log")

	log, err := New(config.LogConfig{Level: "debug", Format: "json", File: path, MaxSize: 1})
	require.NoError(t, err)

	log.Info("Spec registered", zap.String("spec", "ifm-6-temperature-supply"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Spec registered"`)
	assert.Contains(t, string(data), `"spec":"ifm-6-temperature-supply"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNewConsole(t *testing.T) {
	log, err := New(config.LogConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}
