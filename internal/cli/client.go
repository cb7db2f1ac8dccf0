package cli

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-choices/pkg/fetch"
)

type clientConfig struct {
	baseURL string
	token   string
	timeout time.Duration
}

func (c *clientConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-url",
			Category:    "Remote",
			Usage:       "Platform base URL for relative and resource sources",
			Value:       fetch.DefaultBaseURL,
			Sources:     cli.EnvVars("CHOICES_BASE_URL"),
			Destination: &c.baseURL,
		},
		&cli.StringFlag{
			Name:        "token",
			Category:    "Remote",
			Usage:       "Bearer token sent to the platform",
			Sources:     cli.EnvVars("CHOICES_TOKEN"),
			Destination: &c.token,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Category:    "Remote",
			Usage:       "Timeout of a single remote request",
			Value:       fetch.DefaultTimeout,
			Sources:     cli.EnvVars("CHOICES_TIMEOUT"),
			Destination: &c.timeout,
		},
	}
}

func (c *clientConfig) Client(logger *slog.Logger) *fetch.Client {
	return fetch.New(
		fetch.WithBaseURL(c.baseURL),
		fetch.WithToken(c.token),
		fetch.WithTimeout(c.timeout),
		fetch.WithLogger(logger),
	)
}
