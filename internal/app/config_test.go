package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return home
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	isolateConfig(t)
	t.Setenv("SHARED_CLIPBOARD_SERVER_URL", "http://env.test:8080")
	t.Setenv("SHARED_CLIPBOARD_GRACE_SECONDS", "9")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://env.test:8080", cfg.ServerURL)
	assert.Equal(t, 9, cfg.GraceSeconds)
	assert.Equal(t, 100, cfg.PollIntervalMS, "untouched keys keep defaults")
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	home := isolateConfig(t)

	cfg := DefaultConfig()
	cfg.ServerURL = "http://saved.test:8080"
	cfg.SyncPaused = true
	cfg.PollIntervalMS = 250
	require.NoError(t, SaveConfig(cfg))

	path := filepath.Join(home, ConfigDir, ConfigFileName+".yaml")
	_, err := os.Stat(path)
	require.NoError(t, err, "config file written under the config dir")

	viper.Reset()
	loaded, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://saved.test:8080", loaded.ServerURL)
	assert.True(t, loaded.SyncPaused)
	assert.Equal(t, 250, loaded.PollIntervalMS)
	assert.Equal(t, DefaultConfig().GraceSeconds, loaded.GraceSeconds)
}

func TestConfigDirPermissions(t *testing.T) {
	home := isolateConfig(t)

	_, err := LoadConfig()
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(home, ConfigDir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}
