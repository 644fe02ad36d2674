package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "speakers.csv", cfg.Paths.RoomsFile)
	assert.Equal(t, 10*time.Millisecond, cfg.Timing.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Timing.HoldThreshold)
	assert.Equal(t, 35, cfg.Buttons.Button1)
	assert.Equal(t, 0, cfg.Buttons.Button2)
	assert.Equal(t, "auto", cfg.Dispatch.Selection)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.yaml")
	data := `
paths:
  flash_dir: /data
  state_backend: badger
timing:
  idle_timeout: 30s
  fade_duration: 1500ms
dispatch:
  selection: expression
  expression: "long ? count - 1 : clicks - 1"
mqtt:
  broker: tcp://broker:1883
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.Paths.FlashDir)
	assert.Equal(t, "badger", cfg.Paths.StateBackend)
	assert.Equal(t, 30*time.Second, cfg.Timing.IdleTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timing.FadeDuration)
	assert.Equal(t, "expression", cfg.Dispatch.Selection)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	// Untouched sections keep their defaults
	assert.Equal(t, "commands.txt", cfg.Paths.CommandsFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REMOTE_FLASH_DIR", "/mnt/flash")
	t.Setenv("REMOTE_IDLE_TIMEOUT_SEC", "45")
	t.Setenv("REMOTE_GPIO_ACTIVE_LOW", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/flash", cfg.Paths.FlashDir)
	assert.Equal(t, 45*time.Second, cfg.Timing.IdleTimeout)
	assert.False(t, cfg.Buttons.ActiveLow)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Dispatch.Selection = "expression"
	cfg.Paths.StateBackend = "sqlite"
	cfg.SleepMode = "hibernate"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch.expression")
	assert.Contains(t, err.Error(), "sqlite")
	assert.Contains(t, err.Error(), "hibernate")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.yaml")
	cfg := Default()
	cfg.PanelAddr = ":8080"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", loaded.PanelAddr)
	assert.Equal(t, cfg.Timing, loaded.Timing)
}
