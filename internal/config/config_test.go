package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"bcfkit/internal/config"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real config or .env file leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{config.EnvLogLevel, config.EnvLogFormat, config.EnvWorkers, config.EnvPolicy} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if !strings.HasSuffix(resolved, filepath.Join(".config", "bcfkit", "config.toml")) {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Conversion.TopicErrorPolicy != config.PolicySkip {
		t.Fatalf("expected skip policy by default, got %q", cfg.Conversion.TopicErrorPolicy)
	}
	if cfg.Conversion.Workers != 0 || cfg.Conversion.StrictGUIDs {
		t.Fatalf("unexpected conversion defaults %+v", cfg.Conversion)
	}
	if cfg.JSON.Indent != "  " {
		t.Fatalf("unexpected indent %q", cfg.JSON.Indent)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" || cfg.Logging.File != "" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadFileNormalizesValues(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	contents := `
[conversion]
topic_error_policy = " ABORT "
workers = 3
strict_guids = true

[logging]
format = "JSON"
level = "Warning"
file = "~/logs/bcfkit.log"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %q to be loaded, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Conversion.TopicErrorPolicy != config.PolicyAbort || cfg.Conversion.Workers != 3 || !cfg.Conversion.StrictGUIDs {
		t.Fatalf("unexpected conversion %+v", cfg.Conversion)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	home, _ := os.UserHomeDir()
	if cfg.Logging.File != filepath.Join(home, "logs", "bcfkit.log") {
		t.Fatalf("expected expanded log file, got %q", cfg.Logging.File)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "bcfkit.toml"), []byte("[conversion]\nworkers = 2\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || filepath.Base(resolved) != "bcfkit.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Conversion.Workers != 2 {
		t.Fatalf("expected workers from project config, got %d", cfg.Conversion.Workers)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BCFKIT_WORKERS=5\nBCFKIT_LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(config.EnvLogLevel, "error")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Conversion.Workers != 5 {
		t.Fatalf("expected workers from .env, got %d", cfg.Conversion.Workers)
	}
	if cfg.Logging.Level != "error" {
		t.Fatalf("expected process env to win over .env, got %q", cfg.Logging.Level)
	}

	t.Setenv(config.EnvWorkers, "many")
	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected error for non-numeric worker override")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"policy":  func(c *config.Config) { c.Conversion.TopicErrorPolicy = "retry" },
		"workers": func(c *config.Config) { c.Conversion.Workers = -1 },
		"indent":  func(c *config.Config) { c.JSON.Indent = "xx" },
		"format":  func(c *config.Config) { c.Logging.Format = "xml" },
		"level":   func(c *config.Config) { c.Logging.Level = "trace" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "typo.toml")
	if err := os.WriteFile(path, []byte("[conversion]\nworker = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleMatchesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded != config.Default() {
		t.Fatalf("sample diverges from defaults: %+v", decoded)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected CreateSample to refuse overwriting")
	}
}
