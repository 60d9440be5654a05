package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.HRMScanTimeout)
	assert.False(t, cfg.EnableHRM)
	assert.NotEmpty(t, cfg.LogFile)
	assert.NotEmpty(t, cfg.PresetsFile)
	assert.Equal(t, 5, cfg.LogMaxSizeMB)
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Load([]string{
		"--poll-interval", "200ms",
		"--enable-hrm",
		"--presets-file", "/tmp/presets.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, 200*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.EnableHRM)
	assert.Equal(t, "/tmp/presets.yaml", cfg.PresetsFile)
}

func TestLoadRejectsBadFlags(t *testing.T) {
	_, err := Load([]string{"--poll-interval", "not-a-duration"})
	assert.Error(t, err)

	_, err = Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestLoadRejectsNonPositivePollInterval(t *testing.T) {
	_, err := Load([]string{"--poll-interval", "0s"})
	assert.Error(t, err)
}
