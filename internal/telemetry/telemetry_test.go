package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("disabled skips validation", func(t *testing.T) {
		cfg := Config{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("defaults are valid when enabled", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Enabled = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing endpoint", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Enabled = true
		cfg.Endpoint = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("sample rate out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Enabled = true
		cfg.SampleRate = 1.5
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive export interval", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Enabled = true
		cfg.ExportIntervalSeconds = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestNewDisabled(t *testing.T) {
	tel, err := New(context.Background(), DefaultConfig(), "test")
	require.NoError(t, err)
	require.NotNil(t, tel)

	// No providers installed, shutdown is a no-op.
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestShutdownNilReceiver(t *testing.T) {
	var tel *Telemetry
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = ""

	_, err := New(context.Background(), cfg, "test")
	require.Error(t, err)
}
