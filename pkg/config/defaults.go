package config

import (
	"os"
	"time"

	"github.com/ccollicutt/wareader/pkg/palette"
	"github.com/ccollicutt/wareader/pkg/parser"
)

// Default values for configuration.
const (
	DefaultOutput         = "text"
	DefaultStorePath      = "wareader.db"
	DefaultListen         = "127.0.0.1:8080"
	DefaultMaxBodyBytes   = 32 << 20
	DefaultWatchEvery     = 30 * time.Second
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvConfig = "WAREADER_CONFIG"
	EnvSelf   = "WAREADER_SELF"
	EnvDB     = "WAREADER_DB"
	EnvListen = "WAREADER_LISTEN"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Output: DefaultOutput,
		Store: StoreConfig{
			Path: DefaultStorePath,
		},
		Server: ServerConfig{
			Listen:       DefaultListen,
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Watch: WatchConfig{
			Every: DefaultWatchEvery,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if self := os.Getenv(EnvSelf); self != "" {
		c.Self = self
	}
	if db := os.Getenv(EnvDB); db != "" {
		c.Store.Path = db
	}
	if listen := os.Getenv(EnvListen); listen != "" {
		c.Server.Listen = listen
	}
}

// Phrases returns the built-in system phrases followed by the configured ones.
func (c *Config) Phrases() []string {
	phrases := make([]string, 0, len(parser.DefaultSystemPhrases)+len(c.SystemPhrases))
	phrases = append(phrases, parser.DefaultSystemPhrases...)
	return append(phrases, c.SystemPhrases...)
}

// Colors returns the configured palette, or the default one.
func (c *Config) Colors() []string {
	if len(c.Palette) > 0 {
		return c.Palette
	}
	return palette.Default
}
