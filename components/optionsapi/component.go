package optionsapi

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-choices/pkg/model"
)

// Component wraps the options handler, its configuration and routing helpers.
type Component struct {
	opts Options
}

// New constructs a new component with default options plus any overrides.
func New(fns ...OptionFn) *Component {
	opts := NewOptions(fns...)
	return &Component{opts: opts}
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a net/http handler for option queries.
func (c *Component) Handler() http.Handler {
	if c == nil {
		return Handler()
	}
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component handler under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.opts)
}

// FieldConfig returns a remote field reading from the component mounted
// under baseURL. Items are unwrapped from "data" and searched through the
// component's search parameter.
func (c *Component) FieldConfig(key, baseURL string) model.FieldConfig {
	opts := c.Options()
	return model.FieldConfig{
		Key:    key,
		Source: model.SourceRemote,
		Remote: model.RemoteSource{
			Mode: model.RemoteModeURL,
			URL:  strings.TrimRight(baseURL, "/") + joinRoute("", opts.RoutePath),
		},
		SelectValuesPath: "data",
		ValueProperty:    "value",
		LabelProperty:    "label",
		SearchField:      opts.SearchParam,
		Limit:            opts.DefaultLimit,
	}.Normalize()
}
