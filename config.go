package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the process configuration, loaded from a yaml file with
// environment overrides (prefix RADIO_, e.g. RADIO_STORAGE_URL).
type Config struct {
	Listen  ListenConfig  `mapstructure:"listen"`
	Storage StorageConfig `mapstructure:"storage"`
	Player  PlayerConfig  `mapstructure:"player"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

type ListenConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig selects the persistence backend by URL scheme:
// "json://radio-config.json" (default), "sqlite://alarms.db" or a
// "postgres://..." connection string.
type StorageConfig struct {
	URL string `mapstructure:"url"`
}

type PlayerConfig struct {
	// Command is the player command line the stream URL gets appended to.
	Command string `mapstructure:"command"`
	// DefaultStreamURL is played when the radio is switched on without an
	// explicit url.
	DefaultStreamURL string `mapstructure:"default_stream_url"`
}

// AuthConfig enables bearer-token auth when Secret is non-empty. Password
// is exchanged for a JWT at /api/login. With an empty secret the API is
// open, matching a single-user device on a private network.
type AuthConfig struct {
	Secret   string `mapstructure:"secret"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("listen.address", ":8001")
	v.SetDefault("storage.url", "json://radio-config.json")
	v.SetDefault("player.command", "mplayer -volume 150")
	v.SetDefault("player.default_stream_url",
		"https://streamingp.shoutcast.com/hotmixradio-sunny-128.mp3")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("RADIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
