package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/taproom/pkg/service/generator"
	"github.com/secmon-lab/taproom/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Source holds CLI flags for the generator feed
type Source struct {
	url     string
	timeout time.Duration
	breaker bool
}

// Flags returns CLI flags for source configuration
func (s *Source) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source-url",
			Usage:       "Generator feed URL (default: " + generator.DefaultURL + ")",
			Category:    "Source",
			Sources:     cli.EnvVars("TAPROOM_SOURCE_URL"),
			Destination: &s.url,
		},
		&cli.DurationFlag{
			Name:        "source-timeout",
			Usage:       "Timeout of a single fetch. 0 disables the timeout",
			Category:    "Source",
			Sources:     cli.EnvVars("TAPROOM_SOURCE_TIMEOUT"),
			Destination: &s.timeout,
		},
		&cli.BoolFlag{
			Name:        "source-breaker",
			Usage:       "Fail fast while the generator feed keeps failing",
			Category:    "Source",
			Sources:     cli.EnvVars("TAPROOM_SOURCE_BREAKER"),
			Destination: &s.breaker,
		},
	}
}

// Configure builds the generator client. The --source-url flag wins over
// the url of the configuration file.
func (s *Source) Configure(app *AppConfig) *generator.Client {
	url := s.url
	if url == "" && app != nil {
		url = app.Source.URL
	}

	opts := []generator.Option{
		generator.WithURL(url),
		generator.WithTimeout(s.timeout),
	}
	if s.breaker {
		opts = append(opts, generator.WithCircuitBreaker(generator.DefaultBreakerSettings()))
	}

	client := generator.New(opts...)
	logging.Default().Info("Using generator source",
		slog.String("url", client.URL()),
		slog.Duration("timeout", s.timeout),
		slog.Bool("breaker", s.breaker))
	return client
}
