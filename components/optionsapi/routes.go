package optionsapi

import (
	"errors"
	"net/http"
	"path"
	"strings"
)

// ErrNoMux is returned when routes are registered without a router.
var ErrNoMux = errors.New("optionsapi: router is nil")

// Mux registers a handler under a pattern; *http.ServeMux and chi.Router
// both fit.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath reports where RegisterRoutes would mount the endpoint.
func MountPath(basePath string, fns ...OptionFn) string {
	return joinRoute(basePath, NewOptions(fns...).RoutePath)
}

// RegisterRoutes mounts the options endpoint on mux and returns its pattern.
func RegisterRoutes(mux Mux, basePath string, fns ...OptionFn) (string, error) {
	return RegisterRoutesWithOptions(mux, basePath, NewOptions(fns...))
}

// RegisterRoutesWithOptions is RegisterRoutes for an Options value built
// elsewhere; zero fields get their defaults.
func RegisterRoutesWithOptions(mux Mux, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", ErrNoMux
	}
	handler := HandlerWithOptions(opts)
	pattern := joinRoute(basePath, opts.RoutePath)
	mux.Handle(pattern, handler)
	return pattern, nil
}

// joinRoute roots route under base. Blank segments are dropped and the
// result always starts with a slash.
func joinRoute(base, route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		route = DefaultRoutePath
	}
	return path.Join("/", strings.TrimSpace(base), route)
}
