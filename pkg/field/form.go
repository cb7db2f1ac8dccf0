package field

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-choices/pkg/model"
	"github.com/goliatone/go-choices/pkg/watch"
)

// Form groups the fields of one record.
type Form struct {
	record *watch.Record
	fields []*Field
	byKey  map[string]*Field
}

// NewForm builds a field per configuration, all bound to the same record.
// Options apply to every field; WithID is ignored so each field gets its own
// instance id.
func NewForm(configs []model.FieldConfig, opts ...Option) (*Form, error) {
	o := applyOptions(opts)
	record := o.record
	if record == nil {
		record = watch.NewRecord(nil, nil)
	}

	form := &Form{record: record, byKey: make(map[string]*Field, len(configs))}
	fieldOpts := append(append([]Option{}, opts...), WithRecord(record), WithID(""))
	for _, cfg := range configs {
		f, err := New(cfg, fieldOpts...)
		if err != nil {
			form.Close()
			return nil, err
		}
		if _, exists := form.byKey[f.Key()]; exists {
			f.Close()
			form.Close()
			return nil, fmt.Errorf("field: duplicate field key %q", f.Key())
		}
		form.fields = append(form.fields, f)
		form.byKey[f.Key()] = f
	}
	return form, nil
}

// Record returns the shared record.
func (f *Form) Record() *watch.Record { return f.record }

// Fields returns the fields in configuration order.
func (f *Form) Fields() []*Field {
	return append([]*Field(nil), f.fields...)
}

// Field returns the field stored under key.
func (f *Form) Field(key string) (*Field, bool) {
	field, ok := f.byKey[key]
	return field, ok
}

// LoadAll starts every field concurrently and waits for the initial loads.
// A failing field does not cancel the others; the first error is returned.
func (f *Form) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	for _, field := range f.fields {
		g.Go(func() error {
			return field.Start(ctx)
		})
	}
	return g.Wait()
}

// Close closes every field.
func (f *Form) Close() {
	for _, field := range f.fields {
		field.Close()
	}
}
