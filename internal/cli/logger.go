package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"
)

type loggerConfig struct {
	level  string
	format string
}

func (c *loggerConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Category:    "Logging",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("CHOICES_LOG_LEVEL"),
			Destination: &c.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Category:    "Logging",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Sources:     cli.EnvVars("CHOICES_LOG_FORMAT"),
			Destination: &c.format,
		},
	}
}

// Configure builds the logger writing to w. Authorization values, token
// attributes and any of the given secrets are redacted.
func (c *loggerConfig) Configure(w io.Writer, secrets ...string) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.level))); err != nil {
		return nil, goerr.Wrap(err, "invalid log level", goerr.V("level", c.level))
	}

	filterOpts := []masq.Option{
		masq.WithFieldName("Authorization"),
		masq.WithFieldName("token"),
		masq.WithFieldPrefix("secret_"),
	}
	for _, secret := range secrets {
		if secret != "" {
			filterOpts = append(filterOpts, masq.WithContain(secret))
		}
	}
	filter := masq.New(filterOpts...)

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(c.format)) {
	case "", "console":
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
		)
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		})
	default:
		return nil, goerr.New("invalid log format", goerr.V("format", c.format))
	}
	return slog.New(handler), nil
}
