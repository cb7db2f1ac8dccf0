package fetch

import (
	"bytes"
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/goliatone/go-choices/pkg/dotpath"
)

// ErrInvalidPayload is returned for response bodies that are not JSON.
var ErrInvalidPayload = errors.New("fetch: response is not valid JSON")

// Unwrap extracts the option list from a response body. The list is looked up
// at selectValuesPath when set, otherwise under `data`, then `items`, falling
// back to the payload itself. A non-list result becomes a one-element list;
// null, missing and blank payloads yield an empty list. Bodies that are not
// JSON fail with ErrInvalidPayload.
func Unwrap(body []byte, selectValuesPath string) ([]any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []any{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidPayload
	}
	root := gjson.ParseBytes(body)

	var selected gjson.Result
	switch {
	case selectValuesPath != "":
		selected = root.Get(gjsonPath(selectValuesPath))
	case root.IsObject() && root.Get("data").Exists():
		selected = root.Get("data")
	case root.IsObject() && root.Get("items").Exists():
		selected = root.Get("items")
	default:
		selected = root
	}
	return coerce(selected), nil
}

func coerce(result gjson.Result) []any {
	if !result.Exists() || result.Type == gjson.Null {
		return []any{}
	}
	if result.IsArray() {
		values, _ := result.Value().([]any)
		if values == nil {
			return []any{}
		}
		return values
	}
	return []any{result.Value()}
}

// gjsonPath converts a dot path (which may carry bracketed indices) into gjson
// syntax, escaping the characters gjson treats as operators.
func gjsonPath(path string) string {
	segments := dotpath.Split(path)
	escaper := strings.NewReplacer("*", `\*`, "?", `\?`, "#", `\#`, "|", `\|`, "@", `\@`)
	for i, segment := range segments {
		segments[i] = escaper.Replace(segment)
	}
	return strings.Join(segments, ".")
}
