package cli

import (
	"context"

	"github.com/AlecAivazis/survey/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-choices/pkg/field"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/widgets"
)

// asker is satisfied by survey.AskOne.
type asker func(p survey.Prompt, response any, opts ...survey.AskOpt) error

func (a *app) cmdPrompt() *cli.Command {
	var (
		configPath string
		format     string
		assign     []string
	)

	return &cli.Command{
		Name:  "prompt",
		Usage: "Ask for the value of every field interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Field document (yaml, json or toml)",
				Required:    true,
				Destination: &configPath,
			},
			&cli.StringSliceFlag{
				Name:        "set",
				Usage:       "Seed the record with key=value before loading",
				Destination: &assign,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output format of the collected record (json, yaml)",
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

			if err := form.LoadAll(ctx); err != nil {
				a.log().Warn("initial load incomplete", "error", err)
			}
			for _, f := range form.Fields() {
				if err := promptField(f, survey.AskOne); err != nil {
					return err
				}
			}
			return writeOutput(c.Root().Writer, format, form.Record().Data())
		},
	}
}

// promptField asks for the value of f. Fields are asked in document order,
// so dependents have already refreshed from the answers before them.
func promptField(f *field.Field, ask asker) error {
	cfg := f.Config()
	message := cfg.Label
	if message == "" {
		message = cfg.Key
	}

	if cfg.Widget == model.WidgetSelectBoxes {
		boxes := widgets.NewSelectBoxes(f)
		choices := boxes.Choices()
		if len(choices) == 0 {
			return nil
		}
		labels, defaults := choiceLabels(choices)
		var picked []int
		prompt := &survey.MultiSelect{Message: message, Options: labels, Default: defaults}
		if err := ask(prompt, &picked); err != nil {
			return goerr.Wrap(err, "prompt failed", goerr.V("field", cfg.Key))
		}
		flags := boxes.Model()
		for key := range flags {
			flags[key] = false
		}
		for _, idx := range picked {
			flags[choices[idx].Key] = true
		}
		f.SetValue(flags)
		return nil
	}

	radio := widgets.NewRadio(f)
	choices := radio.Choices()
	if len(choices) == 0 {
		return nil
	}
	labels, defaults := choiceLabels(choices)
	prompt := &survey.Select{Message: message, Options: labels}
	if len(defaults) > 0 {
		prompt.Default = defaults[0]
	}
	var picked int
	if err := ask(prompt, &picked); err != nil {
		return goerr.Wrap(err, "prompt failed", goerr.V("field", cfg.Key))
	}
	radio.Select(choices[picked].Key)
	return nil
}

func choiceLabels(choices []widgets.Choice) ([]string, []string) {
	labels := make([]string, 0, len(choices))
	var checked []string
	for _, choice := range choices {
		label := choice.Label
		if label == "" {
			label = choice.Key
		}
		labels = append(labels, label)
		if choice.Checked {
			checked = append(checked, label)
		}
	}
	return labels, checked
}
