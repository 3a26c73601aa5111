package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// OutputFormat selects how command results are rendered on stdout.
type OutputFormat string

const (
	OutputJSON  OutputFormat = "json"
	OutputTable OutputFormat = "table"
)

// Config holds all configuration for swarm.
// It is immutable after creation via Load().
type Config struct {
	// API contains the remote job API endpoint and credential
	API APIConfig `yaml:"api"`

	// Poll contains default wait cadence
	Poll PollConfig `yaml:"poll"`

	// Logging controls the structured logger
	Logging LoggingConfig `yaml:"logging"`

	// Notify configures completion notifications after a wait
	Notify NotifyConfig `yaml:"notify"`

	// Webhook configures the local status-change receiver
	Webhook WebhookConfig `yaml:"webhook"`

	// Output is the default render format: "json" or "table"
	Output OutputFormat `yaml:"output"`
}

// APIConfig identifies the remote job API.
type APIConfig struct {
	// BaseURL is the API root, without a trailing slash
	BaseURL string `yaml:"base_url"`

	// Key is the API key. Prefer SWARM_API_KEY over storing it on disk.
	Key string `yaml:"key,omitempty"`
}

// PollConfig controls how often and how long `swarm wait` polls.
type PollConfig struct {
	// Interval is the pause between poll ticks
	Interval string `yaml:"interval"`

	// Timeout bounds the whole wait
	Timeout string `yaml:"timeout"`
}

// LoggingConfig controls log verbosity and encoding.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// Format is "console" (colourised, human) or "json"
	Format string `yaml:"format"`
}

// NotifyConfig selects the completion notification backends.
type NotifyConfig struct {
	// Backends lists enabled backends: terminal, slack, webhook, amqp
	Backends []string `yaml:"backends"`

	// SlackWebhook is the Slack incoming-webhook URL
	SlackWebhook string `yaml:"slack_webhook,omitempty"`

	// WebhookURL receives a JSON POST per notification
	WebhookURL string `yaml:"webhook_url,omitempty"`

	// AMQP publishes notifications to a RabbitMQ exchange
	AMQP AMQPConfig `yaml:"amqp"`
}

// AMQPConfig identifies the broker and routing for the amqp backend.
type AMQPConfig struct {
	URL        string `yaml:"url,omitempty"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// WebhookConfig controls `swarm webhook serve`.
type WebhookConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`

	// Secret verifies the X-Webhook-Signature header
	Secret string `yaml:"secret,omitempty"`
}

// PollIntervalDuration parses the poll interval as a Duration.
func (c *Config) PollIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(c.Poll.Interval)
}

// PollTimeoutDuration parses the poll timeout as a Duration.
func (c *Config) PollTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Poll.Timeout)
}

// Options controls where Load looks for its inputs.
type Options struct {
	// Path is an explicit config file. When set, it must exist.
	// When empty, ~/.swarm/config.yaml is used if present.
	Path string

	// EnvFile is a dotenv file loaded before env overrides. Variables
	// already present in the environment win. Missing is not an error.
	EnvFile string
}

// Load builds the configuration.
// It applies defaults, then file values, then the dotenv file, then
// environment overrides, then validates.
func Load(opts Options) (*Config, error) {
	cfg := DefaultConfig()

	path := opts.Path
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if err := loadFile(cfg, path, explicit); err != nil {
			return nil, err
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
