package fetch

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-choices/pkg/model"
)

// ResolveURL returns the request URL template of a remote source. URL mode
// roots paths starting with "/" at the base URL. Resource mode targets the
// submissions of the resource form, nested under its project when one is set.
func (c *Client) ResolveURL(src model.RemoteSource) string {
	if src.Mode == model.RemoteModeResource {
		var b strings.Builder
		b.WriteString(c.baseURL)
		if src.Project != "" {
			b.WriteString("/project/")
			b.WriteString(src.Project)
		}
		b.WriteString("/form/")
		b.WriteString(src.Resource)
		b.WriteString("/submission")
		return b.String()
	}
	if strings.HasPrefix(src.URL, "/") {
		return c.baseURL + src.URL
	}
	return src.URL
}

// Query holds the parameters appended to a remote request.
type Query struct {
	Limit       int
	Skip        int
	Select      string
	SearchField string
	SearchText  string
	// Filter is a pre-rendered query fragment appended verbatim.
	Filter string
}

// BuildURL appends q to target. The search parameter and the raw filter
// fragment come first, followed by the encoded paging parameters.
func BuildURL(target string, q Query) string {
	var b strings.Builder
	b.WriteString(target)
	appendPart := func(part string) {
		if part == "" {
			return
		}
		if strings.Contains(b.String(), "?") {
			b.WriteByte('&')
		} else {
			b.WriteByte('?')
		}
		b.WriteString(part)
	}

	if q.SearchField != "" && q.SearchText != "" {
		appendPart(url.QueryEscape(q.SearchField) + "=" + url.QueryEscape(q.SearchText))
	}
	appendPart(strings.TrimLeft(q.Filter, "?&"))

	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	params.Set("skip", strconv.Itoa(q.Skip))
	if q.Select != "" {
		params.Set("select", q.Select)
	}
	appendPart(params.Encode())
	return b.String()
}

// Headers returns the request headers for target. Platform credentials and
// the no-cache directives are only attached when target points at the base
// URL or the source opts into authentication. extra headers are always sent.
func (c *Client) Headers(target string, authenticate bool, extra map[string]string) http.Header {
	header := http.Header{}
	if authenticate || strings.Contains(target, c.baseURL) {
		if c.token != "" {
			header.Set("Authorization", "Bearer "+c.token)
		}
		header.Set("Pragma", "no-cache")
		header.Set("Cache-Control", "no-cache")
	}
	for name, value := range extra {
		if strings.TrimSpace(name) == "" {
			continue
		}
		header.Set(name, value)
	}
	return header
}
