package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:21", cfg.ListenAddr)
	require.Equal(t, uint16(55600), cfg.DataPortBase)
	require.Equal(t, 2, cfg.MaxClients)

	require.FileExists(t, path)
}

func TestToSettingsConvertsDurations(t *testing.T) {
	cfg := Config{IdleTimeout: 600, LoginTimeout: 10}

	settings := cfg.ToSettings()
	require.Equal(t, 600*time.Second, settings.IdleTimeout)
	require.Equal(t, 10*time.Second, settings.LoginTimeout)
}
