package optionsapi

import "net/http"

type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchAll  EmptySearchMode = "all"
)

// DefaultRoutePath is where the endpoint mounts under the base path.
const DefaultRoutePath = "/api/options"

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath       string
	SearchParam     string
	SearchFields    []string
	LimitParam      string
	SkipParam       string
	SelectParam     string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc

	Records []map[string]any
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       DefaultRoutePath,
		SearchParam:     "q",
		SearchFields:    []string{"label"},
		LimitParam:      "limit",
		SkipParam:       "skip",
		SelectParam:     "select",
		DefaultLimit:    100,
		MaxLimit:        500,
		EmptySearchMode: EmptySearchAll,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 100
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 500
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchAll
	}
	if opts.RoutePath == "" {
		opts.RoutePath = DefaultRoutePath
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if len(opts.SearchFields) == 0 {
		opts.SearchFields = []string{"label"}
	} else {
		opts.SearchFields = append([]string{}, opts.SearchFields...)
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.SkipParam == "" {
		opts.SkipParam = "skip"
	}
	if opts.SelectParam == "" {
		opts.SelectParam = "select"
	}
	if opts.Records != nil {
		opts.Records = append([]map[string]any{}, opts.Records...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

// WithSearchFields sets the record paths the search text is matched against.
func WithSearchFields(paths ...string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchFields = append([]string{}, paths...)
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LimitParam = name
	}
}

func WithSkipParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SkipParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.EmptySearchMode = mode
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithRecords(records []map[string]any) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if records == nil {
			o.Records = nil
			return
		}
		o.Records = append([]map[string]any{}, records...)
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}

func (o Options) reserved(name string) bool {
	switch name {
	case o.SearchParam, o.LimitParam, o.SkipParam, o.SelectParam:
		return true
	}
	return false
}
