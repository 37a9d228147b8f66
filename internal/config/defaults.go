package config

const (
	defaultTopicErrorPolicy = PolicySkip
	defaultWorkers          = 0
	defaultJSONIndent       = "  "
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultConfigPath       = "~/.config/bcfkit/config.toml"
	projectConfigName       = "bcfkit.toml"
)

// Topic error policies.
const (
	PolicySkip  = "skip"
	PolicyAbort = "abort"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Conversion: Conversion{
			TopicErrorPolicy: defaultTopicErrorPolicy,
			Workers:          defaultWorkers,
		},
		JSON: JSON{
			Indent: defaultJSONIndent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
