package cli

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-choices/pkg/field"
	"github.com/goliatone/go-choices/pkg/model"
)

type optionView struct {
	Value any    `json:"value" yaml:"value"`
	Label any    `json:"label" yaml:"label"`
	Text  string `json:"text" yaml:"text"`
}

type fieldView struct {
	Key     string                `json:"key" yaml:"key"`
	Widget  string                `json:"widget" yaml:"widget"`
	Source  string                `json:"source" yaml:"source"`
	Value   any                   `json:"value,omitempty" yaml:"value,omitempty"`
	Page    model.PaginationState `json:"page" yaml:"page"`
	Options []optionView          `json:"options" yaml:"options"`
}

func (a *app) cmdLoad() *cli.Command {
	var (
		configPath string
		fieldKey   string
		search     string
		format     string
		assign     []string
		allPages   bool
	)

	return &cli.Command{
		Name:    "load",
		Aliases: []string{"l"},
		Usage:   "Load the option sets of the fields in a document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Field document (yaml, json or toml)",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "field",
				Aliases:     []string{"f"},
				Usage:       "Only print this field",
				Destination: &fieldKey,
			},
			&cli.StringSliceFlag{
				Name:        "set",
				Usage:       "Seed the record with key=value before loading",
				Destination: &assign,
			},
			&cli.StringFlag{
				Name:        "search",
				Usage:       "Search text applied to the selected field",
				Destination: &search,
			},
			&cli.IntFlag{
				Name:  "more",
				Usage: "Number of additional pages to load for the selected field",
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "Load every remaining page of the selected field",
				Destination: &allPages,
			},
			&cli.IntFlag{
				Name:  "max",
				Usage: "Stop paging once this many options are loaded (with --all)",
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output format (json, yaml)",
				Value:       "json",
				Destination: &format,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := parseAssignments(assign)
			if err != nil {
				return err
			}
			form, err := a.buildForm(configPath, data)
			if err != nil {
				return err
			}
			defer form.Close()

			loadErr := form.LoadAll(ctx)
			if loadErr != nil {
				a.log().Warn("initial load incomplete", "error", loadErr)
			}

			fields := form.Fields()
			if fieldKey != "" {
				f, ok := form.Field(fieldKey)
				if !ok {
					return goerr.New("unknown field", goerr.V("field", fieldKey))
				}
				fields = []*field.Field{f}
				if search != "" {
					if err := f.Search(ctx, search, ""); err != nil {
						return goerr.Wrap(err, "search failed", goerr.V("field", fieldKey))
					}
				}
				for i := 0; i < int(c.Int("more")); i++ {
					if err := f.LoadMore(ctx); err != nil {
						return goerr.Wrap(err, "load more failed", goerr.V("field", fieldKey))
					}
				}
				if allPages {
					loaded, err := f.LoadPages(ctx, int(c.Int("max")))
					if err != nil {
						return goerr.Wrap(err, "paging failed", goerr.V("field", fieldKey))
					}
					a.log().Debug("paged field", "field", fieldKey, "loaded", len(loaded))
				}
			}

			views := make([]fieldView, 0, len(fields))
			for _, f := range fields {
				views = append(views, viewField(f))
			}
			return writeOutput(c.Root().Writer, format, views)
		},
	}
}

func viewField(f *field.Field) fieldView {
	cfg := f.Config()
	view := fieldView{
		Key:     cfg.Key,
		Widget:  string(cfg.Widget),
		Source:  string(cfg.Source),
		Value:   f.Value(),
		Page:    f.Page(),
		Options: []optionView{},
	}
	for _, item := range f.Items() {
		view.Options = append(view.Options, optionView{
			Value: f.ItemValue(item),
			Label: f.ItemLabel(item),
			Text:  f.DisplayText(item),
		})
	}
	return view
}

func writeOutput(w io.Writer, format string, value any) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		return goerr.New("unsupported output format", goerr.V("format", format))
	}
}
