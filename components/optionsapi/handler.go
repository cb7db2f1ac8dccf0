package optionsapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// StatusCoder is implemented by guard errors that choose the response status.
type StatusCoder interface {
	StatusCode() int
}

// Denial rejects a request from a Guard. Status defaults to 403.
type Denial struct {
	Status int
	Reason error
}

func (d Denial) Error() string {
	if d.Reason == nil {
		return "optionsapi: " + strings.ToLower(http.StatusText(d.StatusCode()))
	}
	return "optionsapi: denied: " + d.Reason.Error()
}

func (d Denial) Unwrap() error { return d.Reason }

func (d Denial) StatusCode() int {
	if d.Status < 400 || d.Status > 599 {
		return http.StatusForbidden
	}
	return d.Status
}

type optionsResponse struct {
	Data []map[string]any `json:"data"`
}

// Handler serves the records configured through fns.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

// NewHandler is Handler.
func NewHandler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions serves opts.Records. Zero fields of opts get their
// defaults and limits are clamped.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !readOnly(w, r) {
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				deny(w, err)
				return
			}
		}

		page := Search(opts.Records, ParseQuery(r, opts), opts)
		if page == nil {
			page = []map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := json.NewEncoder(w).Encode(optionsResponse{Data: page}); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}

// readOnly answers anything but GET and HEAD with 405.
func readOnly(w http.ResponseWriter, r *http.Request) bool {
	switch {
	case r == nil:
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	case r.Method == http.MethodGet, r.Method == http.MethodHead:
		return true
	default:
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
}

// ParseQuery reads the search, paging and projection parameters of r. Every
// other non-empty parameter becomes an exact-match filter.
func ParseQuery(r *http.Request, opts Options) Query {
	values := r.URL.Query()
	q := Query{
		Text:  values.Get(opts.SearchParam),
		Limit: parseInt(values.Get(opts.LimitParam)),
		Skip:  parseInt(values.Get(opts.SkipParam)),
	}
	if raw := strings.TrimSpace(values.Get(opts.SelectParam)); raw != "" {
		for _, path := range strings.Split(raw, ",") {
			if path = strings.TrimSpace(path); path != "" {
				q.Select = append(q.Select, path)
			}
		}
	}
	for name, entries := range values {
		if opts.reserved(name) || len(entries) == 0 || entries[0] == "" {
			continue
		}
		if q.Filters == nil {
			q.Filters = map[string]string{}
		}
		q.Filters[name] = entries[0]
	}
	return q
}

// deny writes the status chosen by a StatusCoder in err's chain, else 403.
func deny(w http.ResponseWriter, err error) {
	status := http.StatusForbidden
	var coder StatusCoder
	if errors.As(err, &coder) {
		status = Denial{Status: coder.StatusCode()}.StatusCode()
	}
	http.Error(w, http.StatusText(status), status)
}

// parseInt reads a query number; anything unparsable counts as unset.
func parseInt(raw string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(raw))
	return n
}
