package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Zagrios/bs-manager/internal/report"
	"github.com/Zagrios/bs-manager/internal/restore"
	"github.com/Zagrios/bs-manager/internal/teardown"
)

const (
	// ExpectedName is the folder the Oculus store expects Beat Saber in.
	// Only a path ending in this name is ever torn down.
	ExpectedName = "hyperbolic-magnetism-beat-saber"

	// BackupSuffix marks the directory displaced when the redirection was set up
	BackupSuffix = restore.DefaultBackupSuffix

	DefaultPollInterval = "2s"
)

// Config holds everything the cleaner can be tuned with.
// Tags serve both the YAML file loader and viper.
type Config struct {
	PollInterval string `yaml:"poll_interval" mapstructure:"poll_interval"`
	ExpectedName string `yaml:"expected_name" mapstructure:"expected_name"`
	BackupSuffix string `yaml:"backup_suffix" mapstructure:"backup_suffix"`

	// TeardownMode is "target" (remove the resolved tree and the link) or "link"
	TeardownMode string `yaml:"teardown_mode" mapstructure:"teardown_mode"`
	Reverify     bool   `yaml:"reverify" mapstructure:"reverify"`

	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
	LogJSON     bool   `yaml:"log_json" mapstructure:"log_json"`
	Output      string `yaml:"output" mapstructure:"output"`
	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"`
}

// Default returns the reference behaviour
func Default() *Config {
	return &Config{
		PollInterval: DefaultPollInterval,
		ExpectedName: ExpectedName,
		BackupSuffix: BackupSuffix,
		TeardownMode: string(teardown.ModeTarget),
		Reverify:     true,
		LogLevel:     "info",
		Output:       string(report.FormatText),
	}
}

// Load reads a YAML file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the cleaner cannot run with
func (c *Config) Validate() error {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid poll_interval: must be positive, got %s", c.PollInterval)
	}

	if c.ExpectedName == "" || c.ExpectedName != filepath.Base(c.ExpectedName) {
		return fmt.Errorf("invalid expected_name %q: must be a single path component", c.ExpectedName)
	}
	if c.BackupSuffix == "" || strings.ContainsAny(c.BackupSuffix, `/\`) {
		return fmt.Errorf("invalid backup_suffix %q", c.BackupSuffix)
	}

	if _, err := teardown.ParseMode(c.TeardownMode); err != nil {
		return err
	}
	if _, err := report.ParseFormat(c.Output); err != nil {
		return err
	}
	return nil
}

// PollDuration returns the parsed poll interval. Call Validate first.
func (c *Config) PollDuration() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		d, _ = time.ParseDuration(DefaultPollInterval)
	}
	return d
}

// Example configuration as a string
const ExampleConfig = `# symlink-cleaner configuration

# Wait between two liveness probes of the watched process
poll_interval: "2s"

# Only a path ending in this folder name is torn down
expected_name: hyperbolic-magnetism-beat-saber

# <expected_name>.<backup_suffix> is restored after teardown
backup_suffix: bsmbak

# target: remove the directory tree the link points to, then the link
# link:   remove only the link
teardown_mode: target

# Re-check the link right before removing anything
reverify: true

log_level: info
log_json: false

# text, json, yaml or table
output: text

# Prometheus textfile collector output (empty = disabled)
metrics_file: ""
`
