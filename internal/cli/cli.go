// Package cli implements the choices command line: loading option sets from
// field documents, prompting for values, serving an options endpoint and
// deriving fields from OpenAPI descriptions.
package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

const defaultEnvFile = ".env"

// Run executes the command line with args. A .env file, named by
// CHOICES_ENV_FILE or found in the working directory, is loaded first
// without overriding variables already set.
func Run(ctx context.Context, args []string, version string) error {
	if err := loadDotEnv(os.Getenv("CHOICES_ENV_FILE")); err != nil {
		slog.Default().Error("failed to load env file", "error", err)
		return err
	}
	a := &app{}
	cmd := a.command(version, os.Stdout, os.Stderr)
	if err := cmd.Run(ctx, args); err != nil {
		a.log().Error("failed to run choices", "error", err)
		return err
	}
	return nil
}

type app struct {
	logger    *slog.Logger
	loggerCfg loggerConfig
	clientCfg clientConfig
}

func (a *app) command(version string, stdout, stderr io.Writer) *cli.Command {
	flags := append(a.loggerCfg.Flags(), a.clientCfg.Flags()...)
	return &cli.Command{
		Name:      "choices",
		Usage:     "Load and inspect option sets of choice fields",
		Version:   version,
		Flags:     flags,
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := a.loggerCfg.Configure(stderr, a.clientCfg.token)
			if err != nil {
				return ctx, err
			}
			a.logger = logger
			a.logger.Debug("starting choices", "version", version, "baseURL", a.clientCfg.baseURL)
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.cmdLoad(),
			a.cmdPrompt(),
			a.cmdServe(),
			a.cmdOpenAPI(),
			a.cmdValidate(),
		},
	}
}

func (a *app) log() *slog.Logger {
	if a == nil || a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}
