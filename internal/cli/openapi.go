package cli

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-choices/pkg/openapi"
	"github.com/goliatone/go-choices/pkg/widgets"
)

func (a *app) cmdOpenAPI() *cli.Command {
	var (
		source      string
		operationID string
		format      string
		noValidate  bool
	)

	return &cli.Command{
		Name:  "openapi",
		Usage: "Derive choice fields from an OpenAPI document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "source",
				Usage:       "OpenAPI document path or URL",
				Required:    true,
				Destination: &source,
			},
			&cli.StringFlag{
				Name:        "operation",
				Usage:       "Only print the fields of this operation",
				Destination: &operationID,
			},
			&cli.BoolFlag{
				Name:        "no-validate",
				Usage:       "Skip document validation",
				Destination: &noValidate,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output format (json, yaml)",
				Value:       "yaml",
				Destination: &format,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			src, err := parseSource(source)
			if err != nil {
				return err
			}
			loader := openapi.NewLoader(openapi.WithHTTPFallback(30 * time.Second))
			raw, err := loader.Load(ctx, src)
			if err != nil {
				return goerr.Wrap(err, "failed to load document", goerr.V("source", source))
			}
			operations, err := openapi.Parse(ctx, raw, openapi.WithValidation(!noValidate))
			if err != nil {
				return goerr.Wrap(err, "failed to parse document", goerr.V("source", source))
			}

			registry := widgets.NewRegistry()
			for idx := range operations {
				operations[idx].Fields = registry.Decorate(operations[idx].Fields)
			}
			if operationID == "" {
				return writeOutput(c.Root().Writer, format, operations)
			}
			for _, op := range operations {
				if op.ID == operationID {
					return writeOutput(c.Root().Writer, format, op)
				}
			}
			return goerr.New("operation has no choice fields", goerr.V("operation", operationID))
		},
	}
}

func parseSource(raw string) (openapi.Source, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return openapi.Source{}, goerr.New("source is required")
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return openapi.SourceFromURL(path)
	}
	return openapi.SourceFromFile(path), nil
}
