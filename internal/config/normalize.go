package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeConversion()
	c.normalizeLogging()
	return c.normalizePaths()
}

func (c *Config) normalizeConversion() {
	c.Conversion.TopicErrorPolicy = strings.ToLower(strings.TrimSpace(c.Conversion.TopicErrorPolicy))
	if c.Conversion.TopicErrorPolicy == "" {
		c.Conversion.TopicErrorPolicy = defaultTopicErrorPolicy
	}
	if c.JSON.Indent == "" {
		c.JSON.Indent = defaultJSONIndent
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Logging.File) == "" {
		c.Logging.File = ""
		return nil
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}
