package config

import (
	"os"
	"strings"
)

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "SWARM_API_KEY",
		apply: func(c *Config, v string) {
			c.API.Key = v
		},
	},
	{
		envVar: "SWARM_API_URL",
		apply: func(c *Config, v string) {
			c.API.BaseURL = strings.TrimRight(v, "/")
		},
	},
	{
		envVar: "SWARM_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.Logging.Level = v
		},
	},
	{
		envVar: "SWARM_LOG_FORMAT",
		apply: func(c *Config, v string) {
			c.Logging.Format = v
		},
	},
	{
		envVar: "SWARM_POLL_INTERVAL",
		apply: func(c *Config, v string) {
			c.Poll.Interval = v
		},
	},
	{
		envVar: "SWARM_POLL_TIMEOUT",
		apply: func(c *Config, v string) {
			c.Poll.Timeout = v
		},
	},
	{
		envVar: "SWARM_WEBHOOK_SECRET",
		apply: func(c *Config, v string) {
			c.Webhook.Secret = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
