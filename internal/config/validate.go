package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateJSON(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateConversion() error {
	switch c.Conversion.TopicErrorPolicy {
	case PolicySkip, PolicyAbort:
	default:
		return fmt.Errorf("conversion.topic_error_policy: unsupported value %q (want %q or %q)", c.Conversion.TopicErrorPolicy, PolicySkip, PolicyAbort)
	}
	if c.Conversion.Workers < 0 {
		return errors.New("conversion.workers must be zero or positive")
	}
	return nil
}

func (c *Config) validateJSON() error {
	if strings.Trim(c.JSON.Indent, " \t") != "" {
		return errors.New("json.indent must contain only spaces or tabs")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
