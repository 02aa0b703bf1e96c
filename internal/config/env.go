package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/benchsync/internal/foundation/errors"
)

// Environment variables recognised by benchsync.
const (
	EnvRoot        = "BENCHSYNC_ROOT"
	EnvSource      = "BENCHSYNC_SOURCE"
	EnvDestination = "BENCHSYNC_DESTINATION"
	EnvVerify      = "BENCHSYNC_VERIFY"
	EnvMetricsFile = "BENCHSYNC_METRICS_FILE"
	EnvLogLevel    = "BENCHSYNC_LOG_LEVEL"
	EnvLogFormat   = "BENCHSYNC_LOG_FORMAT"
)

var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads .env and .env.local from dir when present. Variables
// already set in the process environment are not overwritten. It returns the
// files that were loaded.
func LoadEnvFiles(dir string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, errors.WrapError(err, errors.CategoryConfig, "failed to load env file").
				Fatal().
				WithContext("path", path).
				Build()
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvSource)); v != "" {
		cfg.Source = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDestination)); v != "" {
		cfg.Destination = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvVerify)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ConfigError("invalid boolean in environment").
				WithCause(err).
				WithContext("variable", EnvVerify).
				Build()
		}
		cfg.Verify = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvMetricsFile)); v != "" {
		cfg.MetricsFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = NormalizeLogLevel(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = NormalizeLogFormat(v)
	}
	return nil
}
