// Package choices is the entry point of the option engine for choice widgets.
// It re-exports the field and form types and wires configuration documents
// and OpenAPI descriptions into ready-to-load forms.
package choices

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/goliatone/go-choices/pkg/config"
	"github.com/goliatone/go-choices/pkg/events"
	"github.com/goliatone/go-choices/pkg/fetch"
	"github.com/goliatone/go-choices/pkg/field"
	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/refresh"
	"github.com/goliatone/go-choices/pkg/watch"
)

// FieldConfig aliases model.FieldConfig for callers building fields in code.
type FieldConfig = model.FieldConfig

// Field is a single choice field bound to a record.
type Field = field.Field

// Form groups fields sharing one record.
type Form = field.Form

// Option configures fields and forms.
type Option = field.Option

// NewField exposes the field constructor from the top-level module.
func NewField(cfg FieldConfig, options ...Option) (*Field, error) {
	return field.New(cfg, options...)
}

// NewForm exposes the form constructor from the top-level module.
func NewForm(configs []FieldConfig, options ...Option) (*Form, error) {
	return field.NewForm(configs, options...)
}

// LoadForm reads the field documents at path, builds a form over them and
// performs the initial load of every field.
func LoadForm(ctx context.Context, path string, options ...Option) (*Form, error) {
	store, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return startForm(ctx, store.Fields(), options...)
}

// LoadFormFS behaves like LoadForm for every document in fsys.
func LoadFormFS(ctx context.Context, fsys fs.FS, options ...Option) (*Form, error) {
	store, err := config.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	return startForm(ctx, store.Fields(), options...)
}

// startForm returns the form together with the load error so callers can
// still inspect fields whose remote sources failed.
func startForm(ctx context.Context, configs []FieldConfig, options ...Option) (*Form, error) {
	form, err := field.NewForm(configs, options...)
	if err != nil {
		return nil, err
	}
	return form, form.LoadAll(ctx)
}

// WithLogger passes logger to every field.
func WithLogger(logger *slog.Logger) Option {
	return field.WithLogger(logger)
}

// WithHooks registers hooks receiving loaded and ready events.
func WithHooks(hooks ...events.Hook) Option {
	return field.WithHooks(hooks...)
}

// WithClient shares client between remote sources.
func WithClient(client *fetch.Client) Option {
	return field.WithClient(client)
}

// WithScheduler sets the scheduler deferring value restores after refreshes.
func WithScheduler(scheduler refresh.Scheduler) Option {
	return field.WithScheduler(scheduler)
}

// WithRecord binds fields to an existing record.
func WithRecord(record *watch.Record) Option {
	return field.WithRecord(record)
}
