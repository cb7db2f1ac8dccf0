package model

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mohae/deepcopy"
)

const (
	// DefaultEmbeddedLimit is the page size of embedded sources when none is
	// configured.
	DefaultEmbeddedLimit = 20
	// DefaultRemoteLimit is the page size of remote sources when none is
	// configured.
	DefaultRemoteLimit = 100
	// DefaultTransformEngine is the evaluator used by transform sources.
	DefaultTransformEngine = "expr"
)

// ErrInvalidConfig is the root of every FieldConfig validation failure.
var ErrInvalidConfig = errors.New("model: invalid field config")

// StaticSource lists the options verbatim. Items are usually objects with
// `value` and `label` properties.
type StaticSource struct {
	Values []any `json:"values,omitempty"`
}

// EmbeddedSource carries a JSON document either as raw text or already
// decoded into maps and slices.
type EmbeddedSource struct {
	JSON any `json:"json,omitempty"`
}

// TransformSource holds an expression that returns the option list. The
// expression sees `data` (the submission record) and `row` (the field's
// sibling values).
type TransformSource struct {
	Expression string `json:"expression,omitempty"`
	Engine     string `json:"engine,omitempty"`
}

// RemoteSource configures a paginated HTTP query.
type RemoteSource struct {
	Mode         RemoteMode        `json:"mode,omitempty"`
	URL          string            `json:"url,omitempty"`
	Project      string            `json:"project,omitempty"`
	Resource     string            `json:"resource,omitempty"`
	Authenticate bool              `json:"authenticate,omitempty"`
	SelectFields string            `json:"selectFields,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// FieldConfig is the immutable per-field configuration of the option engine.
type FieldConfig struct {
	Key    string     `json:"key"`
	Label  string     `json:"label,omitempty"`
	Widget Widget     `json:"widget,omitempty"`
	Source SourceKind `json:"source"`

	Static    StaticSource    `json:"static,omitempty"`
	Embedded  EmbeddedSource  `json:"embedded,omitempty"`
	Transform TransformSource `json:"transform,omitempty"`
	Remote    RemoteSource    `json:"remote,omitempty"`

	ValueProperty    string     `json:"valueProperty,omitempty"`
	LabelProperty    string     `json:"labelProperty,omitempty"`
	SelectValuesPath string     `json:"selectValues,omitempty"`
	Template         string     `json:"template,omitempty"`
	RefreshOn        string     `json:"refreshOn,omitempty"`
	FilterMode       FilterMode `json:"filterMode,omitempty"`
	SearchField      string     `json:"searchField,omitempty"`
	FilterExpression string     `json:"filter,omitempty"`
	Limit            int        `json:"limit,omitempty"`
	ClearOnRefresh   bool       `json:"clearOnRefresh,omitempty"`
	Multiple         bool       `json:"multiple,omitempty"`
}

// Normalize returns a trimmed copy of the configuration with defaults applied
// and every nested collection cloned, so later mutation of the input does not
// leak into the engine.
func (c FieldConfig) Normalize() FieldConfig {
	out := c
	out.Key = strings.TrimSpace(c.Key)
	out.Label = strings.TrimSpace(c.Label)
	out.Widget = Widget(strings.ToLower(strings.TrimSpace(string(c.Widget))))
	out.Source = SourceKind(strings.ToLower(strings.TrimSpace(string(c.Source))))
	out.ValueProperty = strings.TrimSpace(c.ValueProperty)
	out.LabelProperty = strings.TrimSpace(c.LabelProperty)
	out.SelectValuesPath = strings.TrimSpace(c.SelectValuesPath)
	out.RefreshOn = strings.TrimSpace(c.RefreshOn)
	out.SearchField = strings.TrimSpace(c.SearchField)
	out.FilterExpression = strings.TrimSpace(c.FilterExpression)
	out.FilterMode = FilterMode(strings.TrimSpace(string(c.FilterMode)))

	if out.Widget == "" {
		out.Widget = WidgetRadio
	}

	if len(c.Static.Values) > 0 {
		out.Static.Values, _ = deepcopy.Copy(c.Static.Values).([]any)
	}
	if c.Embedded.JSON != nil {
		out.Embedded.JSON = deepcopy.Copy(c.Embedded.JSON)
	}

	out.Transform.Expression = strings.TrimSpace(c.Transform.Expression)
	out.Transform.Engine = strings.ToLower(strings.TrimSpace(c.Transform.Engine))
	if out.Source == SourceTransform && out.Transform.Engine == "" {
		out.Transform.Engine = DefaultTransformEngine
	}

	out.Remote.URL = strings.TrimSpace(c.Remote.URL)
	out.Remote.Project = strings.TrimSpace(c.Remote.Project)
	out.Remote.Resource = strings.TrimSpace(c.Remote.Resource)
	out.Remote.SelectFields = strings.TrimSpace(c.Remote.SelectFields)
	out.Remote.Mode = RemoteMode(strings.ToLower(strings.TrimSpace(string(c.Remote.Mode))))
	if out.Source == SourceRemote && out.Remote.Mode == "" {
		out.Remote.Mode = RemoteModeURL
	}
	if len(c.Remote.Headers) > 0 {
		headers := make(map[string]string, len(c.Remote.Headers))
		for key, value := range c.Remote.Headers {
			headers[key] = value
		}
		out.Remote.Headers = headers
	}

	if out.Limit <= 0 {
		switch out.Source {
		case SourceEmbedded:
			out.Limit = DefaultEmbeddedLimit
		case SourceRemote:
			out.Limit = DefaultRemoteLimit
		}
	}
	return out
}

// Validate reports configuration errors that prevent the engine from being
// built. Runtime problems such as malformed embedded JSON are not validation
// errors; they degrade to an empty option set.
func (c FieldConfig) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return goerr.Wrap(ErrInvalidConfig, "field key is required")
	}
	if !c.Source.Valid() {
		return goerr.Wrap(ErrInvalidConfig, "unsupported source kind",
			goerr.V("key", c.Key), goerr.V("source", string(c.Source)))
	}
	switch c.Widget {
	case "", WidgetRadio, WidgetSelectBoxes:
	default:
		return goerr.Wrap(ErrInvalidConfig, "unsupported widget",
			goerr.V("key", c.Key), goerr.V("widget", string(c.Widget)))
	}
	switch c.FilterMode {
	case "", FilterStartsWith, FilterContains:
	default:
		return goerr.Wrap(ErrInvalidConfig, "unsupported filter mode",
			goerr.V("key", c.Key), goerr.V("filterMode", string(c.FilterMode)))
	}
	if c.RefreshOn != "" && c.RefreshOn == c.Key {
		return goerr.Wrap(ErrInvalidConfig, "field cannot refresh on its own value",
			goerr.V("key", c.Key))
	}

	switch c.Source {
	case SourceTransform:
		if strings.TrimSpace(c.Transform.Expression) == "" {
			return goerr.Wrap(ErrInvalidConfig, "transform source requires an expression",
				goerr.V("key", c.Key))
		}
	case SourceRemote:
		switch c.Remote.Mode {
		case "", RemoteModeURL:
			if strings.TrimSpace(c.Remote.URL) == "" {
				return goerr.Wrap(ErrInvalidConfig, "remote source requires a url",
					goerr.V("key", c.Key))
			}
		case RemoteModeResource:
			if strings.TrimSpace(c.Remote.Resource) == "" {
				return goerr.Wrap(ErrInvalidConfig, "resource source requires a resource id",
					goerr.V("key", c.Key))
			}
		default:
			return goerr.Wrap(ErrInvalidConfig, "unsupported remote mode",
				goerr.V("key", c.Key), goerr.V("mode", string(c.Remote.Mode)))
		}
	}
	if c.Limit < 0 {
		return goerr.Wrap(ErrInvalidConfig, "limit must not be negative",
			goerr.V("key", c.Key), goerr.V("limit", c.Limit))
	}
	return nil
}

// EmptyValue is the value stored when the field is cleared.
func (c FieldConfig) EmptyValue() any {
	if c.Multiple {
		return []any{}
	}
	return ""
}
