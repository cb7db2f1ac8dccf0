package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-choices/pkg/model"
)

const (
	endpointExtensionKey   = "x-endpoint"
	enumLabelsExtensionKey = "x-enumNames"
)

// Operation lists the choice fields found in one operation's request body.
type Operation struct {
	ID     string
	Method string
	Path   string
	Fields []model.FieldConfig
}

// Field returns the field stored under key.
func (op Operation) Field(key string) (model.FieldConfig, bool) {
	for _, cfg := range op.Fields {
		if cfg.Key == key {
			return cfg, true
		}
	}
	return model.FieldConfig{}, false
}

type parseOptions struct {
	validate bool
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

// WithValidation toggles document validation. It is on by default.
func WithValidation(enabled bool) ParseOption {
	return func(o *parseOptions) {
		o.validate = enabled
	}
}

// Parse loads raw with kin-openapi and returns, sorted by path then method,
// every operation whose request body declares at least one choice field.
func Parse(ctx context.Context, raw []byte, opts ...ParseOption) ([]Operation, error) {
	options := parseOptions{validate: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if options.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}
	if spec.Paths == nil {
		return nil, nil
	}

	paths := spec.Paths.Map()
	names := make([]string, 0, len(paths))
	for path := range paths {
		names = append(names, path)
	}
	sort.Strings(names)

	var out []Operation
	for _, path := range names {
		item := paths[path]
		if item == nil {
			continue
		}
		operations := item.Operations()
		methods := make([]string, 0, len(operations))
		for method := range operations {
			methods = append(methods, method)
		}
		sort.Strings(methods)

		for _, method := range methods {
			operation := operations[method]
			if operation == nil {
				continue
			}
			fields := fieldsFromRequest(operation.RequestBody)
			if len(fields) == 0 {
				continue
			}
			id := operation.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{ID: id, Method: method, Path: path, Fields: fields})
		}
	}
	return out, nil
}

func fieldsFromRequest(body *openapi3.RequestBodyRef) []model.FieldConfig {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return fieldsFromSchema("", mt.Schema)
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil {
			return fieldsFromSchema("", mt.Schema)
		}
	}
	return nil
}

func fieldsFromSchema(prefix string, ref *openapi3.SchemaRef) []model.FieldConfig {
	if ref == nil || ref.Value == nil || len(ref.Value.Properties) == 0 {
		return nil
	}
	names := make([]string, 0, len(ref.Value.Properties))
	for name := range ref.Value.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []model.FieldConfig
	for _, name := range names {
		property := ref.Value.Properties[name]
		if property == nil || property.Value == nil {
			continue
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if cfg, ok := fieldFromProperty(key, property.Value); ok {
			out = append(out, cfg)
			continue
		}
		if property.Value.Type.Is(openapi3.TypeObject) {
			out = append(out, fieldsFromSchema(key, property)...)
		}
	}
	return out
}

// fieldFromProperty maps one property. Arrays become select boxes over their
// item schema, everything else a radio group.
func fieldFromProperty(key string, schema *openapi3.Schema) (model.FieldConfig, bool) {
	cfg := model.FieldConfig{
		Key:    key,
		Label:  firstNonEmpty(schema.Title, key),
		Widget: model.WidgetRadio,
	}
	options := schema
	if schema.Type.Is(openapi3.TypeArray) {
		cfg.Widget = model.WidgetSelectBoxes
		cfg.Multiple = true
		if schema.Items != nil && schema.Items.Value != nil {
			options = schema.Items.Value
		}
	}

	raw, ok := schema.Extensions[endpointExtensionKey]
	if !ok && options != schema {
		raw, ok = options.Extensions[endpointExtensionKey]
	}
	if ok {
		endpoint, valid := endpointFromExtension(raw)
		if !valid {
			return model.FieldConfig{}, false
		}
		endpoint.apply(&cfg)
		return finalize(cfg)
	}

	if len(options.Enum) == 0 {
		return model.FieldConfig{}, false
	}
	labels := enumLabels(options.Extensions[enumLabelsExtensionKey])
	values := make([]any, 0, len(options.Enum))
	for idx, value := range options.Enum {
		label := fmt.Sprint(value)
		if idx < len(labels) && labels[idx] != "" {
			label = labels[idx]
		}
		values = append(values, map[string]any{"value": value, "label": label})
	}
	cfg.Source = model.SourceStatic
	cfg.Static.Values = values
	return finalize(cfg)
}

func finalize(cfg model.FieldConfig) (model.FieldConfig, bool) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return model.FieldConfig{}, false
	}
	return cfg, true
}

func enumLabels(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for idx, entry := range list {
		if s, ok := entry.(string); ok {
			out[idx] = strings.TrimSpace(s)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
