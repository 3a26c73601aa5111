package config

const (
	DefaultBaseURL         = "https://api.cursor.com"
	DefaultPollInterval    = "10s"
	DefaultPollTimeout     = "30m"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
	DefaultWebhookAddr     = ":8787"
	DefaultAMQPExchange    = "swarm.events"
	DefaultAMQPRoutingKey  = "job.completed"
	DefaultOutput          = OutputJSON
	DefaultEnvFile         = ".env"
	MinWebhookSecretLength = 32
)

// DefaultNotifyConfig returns notification defaults: terminal only.
func DefaultNotifyConfig() NotifyConfig {
	return NotifyConfig{
		Backends: []string{"terminal"},
		AMQP: AMQPConfig{
			Exchange:   DefaultAMQPExchange,
			RoutingKey: DefaultAMQPRoutingKey,
		},
	}
}

// DefaultConfig returns a Config with all default values applied.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Poll: PollConfig{
			Interval: DefaultPollInterval,
			Timeout:  DefaultPollTimeout,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Notify: DefaultNotifyConfig(),
		Webhook: WebhookConfig{
			Addr: DefaultWebhookAddr,
		},
		Output: DefaultOutput,
	}
}
