package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.Listen.Address)
	assert.Equal(t, "json://radio-config.json", cfg.Storage.URL)
	assert.Equal(t, "mplayer -volume 150", cfg.Player.Command)
	assert.NotEmpty(t, cfg.Player.DefaultStreamURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Auth.Secret)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen:
  address: ":9000"
storage:
  url: sqlite://alarms.db
player:
  command: mpv --no-video
  default_stream_url: http://stream.example/morning
auth:
  secret: topsecret
  password: hunter2
log:
  level: debug
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen.Address)
	assert.Equal(t, "sqlite://alarms.db", cfg.Storage.URL)
	assert.Equal(t, "mpv --no-video", cfg.Player.Command)
	assert.Equal(t, "http://stream.example/morning", cfg.Player.DefaultStreamURL)
	assert.Equal(t, "topsecret", cfg.Auth.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
