package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INFERENCE_API_KEY", "")
	t.Setenv("USE_SPECULATIVE", "")
	t.Setenv("USE_ON_DEVICE_STT", "")
	t.Setenv("DISABLE_AUTO_MAXIMIZE", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.False(t, cfg.Voice)
	assert.Equal(t, demoAPIKey, cfg.InferenceAPIKey)
	assert.False(t, cfg.UseSpeculative)
	assert.False(t, cfg.UseOnDeviceSTT)
}

func TestLoadVoiceFlagAndEnv(t *testing.T) {
	t.Setenv("INFERENCE_API_KEY", "sk-real")
	t.Setenv("USE_SPECULATIVE", "1")
	t.Setenv("USE_ON_DEVICE_STT", "1")

	cfg, err := Load([]string{"--voice"})
	require.NoError(t, err)
	assert.True(t, cfg.Voice)
	assert.Equal(t, "sk-real", cfg.InferenceAPIKey)
	assert.True(t, cfg.UseSpeculative)
	assert.True(t, cfg.UseOnDeviceSTT)
}
