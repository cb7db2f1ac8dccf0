package openapi

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-choices/pkg/model"
)

var fieldPlaceholderPattern = regexp.MustCompile(`\{\{\s*field:([^\}\s]+)\s*\}\}`)

// Endpoint is the x-endpoint extension of a property.
type Endpoint struct {
	URL           string
	Method        string
	LabelField    string
	ValueField    string
	ResultsPath   string
	SearchParam   string
	Params        map[string]string
	DynamicParams map[string]string
	AuthStrategy  string
}

func endpointFromExtension(raw any) (Endpoint, bool) {
	values, ok := raw.(map[string]any)
	if !ok {
		return Endpoint{}, false
	}
	endpoint := Endpoint{
		URL:           strings.TrimSpace(toString(values["url"])),
		Method:        strings.ToUpper(strings.TrimSpace(toString(values["method"]))),
		LabelField:    strings.TrimSpace(toString(values["labelField"])),
		ValueField:    strings.TrimSpace(toString(values["valueField"])),
		ResultsPath:   strings.TrimSpace(toString(values["resultsPath"])),
		SearchParam:   strings.TrimSpace(toString(values["searchParam"])),
		Params:        toStringMap(values["params"]),
		DynamicParams: toStringMap(values["dynamicParams"]),
	}
	if auth := toStringMap(values["auth"]); len(auth) > 0 {
		endpoint.AuthStrategy = strings.TrimSpace(auth["strategy"])
	}
	if endpoint.URL == "" {
		return Endpoint{}, false
	}
	if endpoint.Method != "" && endpoint.Method != "GET" {
		return Endpoint{}, false
	}
	return endpoint, true
}

// apply turns cfg into a remote source. Static params are encoded into the
// URL; dynamic params become the filter fragment and the fields they
// reference become the refresh dependency.
func (e Endpoint) apply(cfg *model.FieldConfig) {
	cfg.Source = model.SourceRemote
	cfg.Remote = model.RemoteSource{
		Mode:         model.RemoteModeURL,
		URL:          withParams(e.URL, e.Params),
		Authenticate: e.AuthStrategy != "",
	}
	cfg.ValueProperty = e.ValueField
	cfg.LabelProperty = e.LabelField
	cfg.SelectValuesPath = e.ResultsPath
	cfg.SearchField = e.SearchParam
	if e.LabelField != "" {
		cfg.Template = "<span>{{ item." + e.LabelField + " }}</span>"
	}

	if len(e.DynamicParams) == 0 {
		return
	}
	keys := sortedKeys(e.DynamicParams)
	fragments := make([]string, 0, len(keys))
	refs := map[string]struct{}{}
	for _, key := range keys {
		value := fieldPlaceholderPattern.ReplaceAllStringFunc(e.DynamicParams[key], func(match string) string {
			name := fieldPlaceholderPattern.FindStringSubmatch(match)[1]
			refs[name] = struct{}{}
			return "{{ data." + name + " }}"
		})
		fragments = append(fragments, url.QueryEscape(key)+"="+value)
	}
	cfg.FilterExpression = strings.Join(fragments, "&")

	switch len(refs) {
	case 0:
	case 1:
		for name := range refs {
			cfg.RefreshOn = name
		}
	default:
		cfg.RefreshOn = model.RefreshOnRecord
	}
}

func withParams(target string, params map[string]string) string {
	if len(params) == 0 {
		return target
	}
	query := url.Values{}
	for key, value := range params {
		query.Set(key, value)
	}
	separator := "?"
	if strings.Contains(target, "?") {
		separator = "&"
	}
	return target + separator + query.Encode()
}

func toString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func toStringMap(value any) map[string]string {
	mapped, ok := value.(map[string]any)
	if !ok || len(mapped) == 0 {
		return nil
	}
	out := make(map[string]string, len(mapped))
	for key, entry := range mapped {
		out[key] = toString(entry)
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
