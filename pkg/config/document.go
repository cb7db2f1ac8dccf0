// Package config reads field configuration documents. A document lists
// choice components in the form builder settings shape (dataSrc, data.values,
// data.json, data.url, ...) and is decoded from JSON, YAML or TOML.
package config

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-choices/pkg/model"
)

// ErrInvalidDocument is the root of every document error.
var ErrInvalidDocument = errors.New("config: invalid document")

// Data sources understood in documents.
const (
	DataSrcValues   = "values"
	DataSrcJSON     = "json"
	DataSrcURL      = "url"
	DataSrcResource = "resource"
	DataSrcCustom   = "custom"
)

// Document is one decoded configuration file.
type Document struct {
	Project    string      `json:"project,omitempty" yaml:"project,omitempty" toml:"project,omitempty"`
	Components []Component `json:"components" yaml:"components" toml:"components"`
}

// Component holds the settings of one radio or select boxes component.
type Component struct {
	Key            string `json:"key" yaml:"key" toml:"key"`
	Type           string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Label          string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	DataSrc        string `json:"dataSrc,omitempty" yaml:"dataSrc,omitempty" toml:"dataSrc,omitempty"`
	Data           Data   `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
	Engine         string `json:"engine,omitempty" yaml:"engine,omitempty" toml:"engine,omitempty"`
	ValueProperty  string `json:"valueProperty,omitempty" yaml:"valueProperty,omitempty" toml:"valueProperty,omitempty"`
	LabelProperty  string `json:"labelProperty,omitempty" yaml:"labelProperty,omitempty" toml:"labelProperty,omitempty"`
	SelectValues   string `json:"selectValues,omitempty" yaml:"selectValues,omitempty" toml:"selectValues,omitempty"`
	Template       string `json:"template,omitempty" yaml:"template,omitempty" toml:"template,omitempty"`
	RefreshOn      string `json:"refreshOn,omitempty" yaml:"refreshOn,omitempty" toml:"refreshOn,omitempty"`
	Filter         string `json:"filter,omitempty" yaml:"filter,omitempty" toml:"filter,omitempty"`
	SearchField    string `json:"searchField,omitempty" yaml:"searchField,omitempty" toml:"searchField,omitempty"`
	Limit          int    `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty"`
	ClearOnRefresh bool   `json:"clearOnRefresh,omitempty" yaml:"clearOnRefresh,omitempty" toml:"clearOnRefresh,omitempty"`
	Authenticate   bool   `json:"authenticate,omitempty" yaml:"authenticate,omitempty" toml:"authenticate,omitempty"`
	SelectFields   string `json:"selectFields,omitempty" yaml:"selectFields,omitempty" toml:"selectFields,omitempty"`
	Project        string `json:"project,omitempty" yaml:"project,omitempty" toml:"project,omitempty"`
	Multiple       bool   `json:"multiple,omitempty" yaml:"multiple,omitempty" toml:"multiple,omitempty"`
}

// Data carries the per-source settings of a component.
type Data struct {
	Values   []any    `json:"values,omitempty" yaml:"values,omitempty" toml:"values,omitempty"`
	JSON     any      `json:"json,omitempty" yaml:"json,omitempty" toml:"json,omitempty"`
	URL      string   `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Resource string   `json:"resource,omitempty" yaml:"resource,omitempty" toml:"resource,omitempty"`
	Custom   string   `json:"custom,omitempty" yaml:"custom,omitempty" toml:"custom,omitempty"`
	Headers  []Header `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
}

// Header is one extra request header of a url source.
type Header struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// FieldConfig converts the component into a normalised, validated field
// configuration. project is the document level project, used by resource
// sources that do not name their own.
func (c Component) FieldConfig(project string) (model.FieldConfig, error) {
	cfg := model.FieldConfig{
		Key:              c.Key,
		Label:            c.Label,
		Widget:           model.Widget(c.Type),
		ValueProperty:    c.ValueProperty,
		LabelProperty:    c.LabelProperty,
		SelectValuesPath: c.SelectValues,
		Template:         c.Template,
		RefreshOn:        c.RefreshOn,
		SearchField:      c.SearchField,
		Limit:            c.Limit,
		ClearOnRefresh:   c.ClearOnRefresh,
		Multiple:         c.Multiple,
	}

	switch src := strings.ToLower(strings.TrimSpace(c.DataSrc)); src {
	case "", DataSrcValues:
		cfg.Source = model.SourceStatic
		cfg.Static.Values = c.Data.Values
	case DataSrcJSON:
		cfg.Source = model.SourceEmbedded
		cfg.Embedded.JSON = c.Data.JSON
		cfg.FilterMode = model.FilterMode(strings.TrimSpace(c.Filter))
	case DataSrcURL, DataSrcResource:
		cfg.Source = model.SourceRemote
		cfg.FilterExpression = c.Filter
		cfg.Remote = model.RemoteSource{
			Mode:         model.RemoteModeURL,
			URL:          c.Data.URL,
			Authenticate: c.Authenticate,
			SelectFields: c.SelectFields,
			Headers:      headerMap(c.Data.Headers),
		}
		if src == DataSrcResource {
			cfg.Remote.Mode = model.RemoteModeResource
			cfg.Remote.Resource = c.Data.Resource
			cfg.Remote.Project = firstNonEmpty(c.Project, project)
		}
	case DataSrcCustom:
		cfg.Source = model.SourceTransform
		cfg.Transform = model.TransformSource{Expression: c.Data.Custom, Engine: c.Engine}
	default:
		return model.FieldConfig{}, goerr.Wrap(ErrInvalidDocument, "unsupported dataSrc",
			goerr.V("key", c.Key), goerr.V("dataSrc", c.DataSrc))
	}

	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return model.FieldConfig{}, err
	}
	return cfg, nil
}

func headerMap(headers []Header) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for _, header := range headers {
		key := strings.TrimSpace(header.Key)
		if key == "" {
			continue
		}
		out[key] = header.Value
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
