package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the optional TOML configuration file. Command line
// flags take precedence over its values.
type AppConfig struct {
	path string

	Source SourceConfig `toml:"source"`
}

// SourceConfig configures the generator feed and ingestion batch sizes
type SourceConfig struct {
	URL          string `toml:"url"`
	DefaultCount int    `toml:"default_count"`
	MaxCount     int    `toml:"max_count"`
}

// Validate checks if the SourceConfig is valid. Zero values mean "use the
// built-in default".
func (s *SourceConfig) Validate() error {
	if s.URL != "" {
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return goerr.Wrap(ErrInvalidConfig, "source url must be an absolute http(s) URL", goerr.V("url", s.URL))
		}
	}
	if s.DefaultCount < 0 {
		return goerr.Wrap(ErrInvalidConfig, "default_count must not be negative", goerr.V("default_count", s.DefaultCount))
	}
	if s.MaxCount < 0 {
		return goerr.Wrap(ErrInvalidConfig, "max_count must not be negative", goerr.V("max_count", s.MaxCount))
	}
	if s.DefaultCount > 0 && s.MaxCount > 0 && s.DefaultCount > s.MaxCount {
		return goerr.Wrap(ErrInvalidConfig, "default_count exceeds max_count",
			goerr.V("default_count", s.DefaultCount),
			goerr.V("max_count", s.MaxCount))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Source.Validate(); err != nil {
		return goerr.Wrap(err, "invalid source section")
	}
	return nil
}

// Flags returns CLI flags for the configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("TAPROOM_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the configuration file given by --config. Without the
// flag the zero configuration is returned.
func (a *AppConfig) Configure() (*AppConfig, error) {
	if a.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(a.path)
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	config.path = path
	return &config, nil
}
