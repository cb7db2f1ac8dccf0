package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-choices/pkg/config"
)

func (a *app) cmdValidate() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check field documents for invalid or duplicate fields",
		ArgsUsage: "<paths...>",
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one document path is required")
			}
			w := c.Root().Writer

			failed := 0
			for _, path := range paths {
				store, err := config.LoadFile(path)
				if err != nil {
					failed++
					fmt.Fprintf(w, "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(w, "%s: %d fields ok\n", path, len(store.Fields()))
			}
			if failed > 0 {
				return goerr.New("invalid field documents", goerr.V("failed", failed))
			}
			return nil
		},
	}
}
