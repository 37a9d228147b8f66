package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"bcfkit/internal/config"
	"bcfkit/internal/logging"
	"bcfkit/internal/pipeline"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the logger once, applying --log-level and --log-format
// over the [logging] section.
func (c *commandContext) ensureLogger(out io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		opts := logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			Output:   out,
			FilePath: cfg.Logging.File,
		}
		if value := flagValue(c.logLevelFlag); value != "" {
			opts.Level = value
		}
		if value := flagValue(c.logFormatFlag); value != "" {
			opts.Format = value
		}
		c.logger, c.loggerErr = logging.New(opts)
	})
	return c.logger, c.loggerErr
}

// options maps the [conversion] and [json] sections onto converter options.
func (c *commandContext) options(logger *slog.Logger) (pipeline.Options, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	policy, err := pipeline.ParsePolicy(cfg.Conversion.TopicErrorPolicy)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Workers:     cfg.Conversion.Workers,
		Policy:      policy,
		StrictGUIDs: cfg.Conversion.StrictGUIDs,
		Indent:      cfg.JSON.Indent,
		Logger:      logger,
	}, nil
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*flag))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
