package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file looked up when --config is not given.
const DefaultConfigFile = "benchsync.yaml"

const (
	DefaultSource      = "target/criterion"
	DefaultDestination = "docs/benches/eazy"
	DefaultDebounce    = 500 * time.Millisecond
)

// Config represents the application configuration.
type Config struct {
	// Source is the benchmark output directory, relative to the repository root unless absolute.
	Source string `yaml:"source"`
	// Destination is the documentation directory that is replaced on every sync.
	Destination string `yaml:"destination"`
	// Verify runs the link audit on the relocated index after each sync.
	Verify bool `yaml:"verify"`
	// Strict turns broken links found by the audit into a failure and
	// implies Verify.
	Strict      bool          `yaml:"strict"`
	MetricsFile string        `yaml:"metrics_file,omitempty"`
	Logging     LoggingConfig `yaml:"logging"`
	Watch       WatchConfig   `yaml:"watch"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from configPath. A missing file is not an error:
// the tool runs with defaults plus environment overrides.
func Load(configPath string) (*Config, error) {
	if _, err := LoadEnvFiles("."); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			// Expand environment variables in the YAML content
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
					Fatal().
					WithContext("path", configPath).
					Build()
			}
		case os.IsNotExist(err):
			// defaults only
		default:
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration").
				Fatal().
				WithContext("path", configPath).
				Build()
		}
	}

	applyDefaults(cfg)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if cfg.Strict {
		cfg.Verify = true
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Destination == "" {
		cfg.Destination = DefaultDestination
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}

// Init creates a new configuration file with the default values.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	return nil
}
