package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvLogLevel  = "BCFKIT_LOG_LEVEL"
	EnvLogFormat = "BCFKIT_LOG_FORMAT"
	EnvWorkers   = "BCFKIT_WORKERS"
	EnvPolicy    = "BCFKIT_TOPIC_ERROR_POLICY"
)

const dotenvFile = ".env"

type envSource struct {
	dotenv map[string]string
}

// loadEnv reads .env from the working directory. Process variables win over
// the file.
func loadEnv() (envSource, error) {
	values, err := godotenv.Read(dotenvFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return envSource{}, nil
		}
		return envSource{}, fmt.Errorf("read %s: %w", dotenvFile, err)
	}
	return envSource{dotenv: values}, nil
}

func (e envSource) lookup(key string) (string, bool) {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value, true
	}
	value, ok := e.dotenv[key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (c *Config) applyEnv(env envSource) error {
	if value, ok := env.lookup(EnvLogLevel); ok {
		c.Logging.Level = value
	}
	if value, ok := env.lookup(EnvLogFormat); ok {
		c.Logging.Format = value
	}
	if value, ok := env.lookup(EnvPolicy); ok {
		c.Conversion.TopicErrorPolicy = value
	}
	if value, ok := env.lookup(EnvWorkers); ok {
		workers, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Conversion.Workers = workers
	}
	return nil
}
