package app

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the config file name (without extension)
	ConfigFileName = "config"

	// ConfigDir is the directory for config files
	ConfigDir = ".shared-clipboard"

	// EnvPrefix namespaces environment overrides, e.g.
	// SHARED_CLIPBOARD_SERVER_URL
	EnvPrefix = "SHARED_CLIPBOARD"
)

// Config holds the client configuration. The timing fields exist because
// the grace window and poll cadence are heuristics, not fixed requirements.
type Config struct {
	ServerURL  string `mapstructure:"server_url"`
	SyncPaused bool   `mapstructure:"sync_paused"`

	// Clipboard backend: "command" (platform paste/copy tools) or "memory"
	ClipboardBackend string `mapstructure:"clipboard_backend"`

	PollIntervalMS    int `mapstructure:"poll_interval_ms"`
	PushMinIntervalMS int `mapstructure:"push_min_interval_ms"`
	GraceSeconds      int `mapstructure:"grace_seconds"`
	ReadRetries       int `mapstructure:"read_retries"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ServerURL:         "",
		SyncPaused:        false,
		ClipboardBackend:  "command",
		PollIntervalMS:    100,
		PushMinIntervalMS: 200,
		GraceSeconds:      5,
		ReadRetries:       3,
	}
}

// LoadConfig loads configuration from file, with environment overrides
func LoadConfig() (*Config, error) {
	configDir := getConfigDir()

	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	viper.SetConfigName(ConfigFileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server_url", "")
	viper.SetDefault("sync_paused", false)
	viper.SetDefault("clipboard_backend", "command")
	viper.SetDefault("poll_interval_ms", 100)
	viper.SetDefault("push_min_interval_ms", 200)
	viper.SetDefault("grace_seconds", 5)
	viper.SetDefault("read_retries", 3)

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, fall back to defaults and environment
			return &Config{
				ServerURL:         viper.GetString("server_url"),
				SyncPaused:        viper.GetBool("sync_paused"),
				ClipboardBackend:  viper.GetString("clipboard_backend"),
				PollIntervalMS:    viper.GetInt("poll_interval_ms"),
				PushMinIntervalMS: viper.GetInt("push_min_interval_ms"),
				GraceSeconds:      viper.GetInt("grace_seconds"),
				ReadRetries:       viper.GetInt("read_retries"),
			}, nil
		}
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig saves configuration to file. Called only on confirmed URL
// change, never on every tick.
func SaveConfig(config *Config) error {
	configDir := getConfigDir()

	// Ensure config directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	viper.Set("server_url", config.ServerURL)
	viper.Set("sync_paused", config.SyncPaused)
	viper.Set("clipboard_backend", config.ClipboardBackend)
	viper.Set("poll_interval_ms", config.PollIntervalMS)
	viper.Set("push_min_interval_ms", config.PushMinIntervalMS)
	viper.Set("grace_seconds", config.GraceSeconds)
	viper.Set("read_retries", config.ReadRetries)

	configPath := filepath.Join(configDir, ConfigFileName+".yaml")
	return viper.WriteConfigAs(configPath)
}

func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ConfigDir)
}
