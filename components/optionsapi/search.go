package optionsapi

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/goliatone/go-choices/pkg/dotpath"
)

// Query is one page request against a record set.
type Query struct {
	Text    string
	Limit   int
	Skip    int
	Select  []string
	Filters map[string]string
}

// Search filters records by q and returns one page. Records matching the
// search text at the start of a search field sort before records matching
// elsewhere; otherwise the input order is kept.
func Search(records []map[string]any, q Query, opts Options) []map[string]any {
	limit := clampLimit(q.Limit, opts)
	if limit == 0 {
		return nil
	}

	text := strings.TrimSpace(q.Text)
	if text == "" && opts.EmptySearchMode == EmptySearchNone {
		return nil
	}

	fold := cases.Fold()
	needle := fold.String(text)
	matches := make([]matchedRecord, 0, 32)
	for _, record := range records {
		if !matchesFilters(record, q.Filters) {
			continue
		}
		if needle == "" {
			matches = append(matches, matchedRecord{record: record})
			continue
		}
		matched, prefix := matchText(record, needle, opts.SearchFields, fold)
		if !matched {
			continue
		}
		matches = append(matches, matchedRecord{record: record, isPrefix: prefix})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	skip := q.Skip
	if skip < 0 {
		skip = 0
	}
	if skip >= len(matches) {
		return nil
	}
	matches = matches[skip:]
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]map[string]any, 0, len(matches))
	for _, match := range matches {
		out = append(out, project(match.record, q.Select))
	}
	return out
}

func matchText(record map[string]any, needle string, fields []string, fold cases.Caser) (bool, bool) {
	matched := false
	for _, field := range fields {
		value, ok := dotpath.Get(record, field)
		if !ok || value == nil {
			continue
		}
		haystack := fold.String(fmt.Sprint(value))
		if strings.HasPrefix(haystack, needle) {
			return true, true
		}
		if strings.Contains(haystack, needle) {
			matched = true
		}
	}
	return matched, false
}

func matchesFilters(record map[string]any, filters map[string]string) bool {
	for path, want := range filters {
		value, ok := dotpath.Get(record, path)
		if !ok || fmt.Sprint(value) != want {
			return false
		}
	}
	return true
}

// project keeps only the listed paths. An empty selection returns record.
func project(record map[string]any, paths []string) map[string]any {
	if len(paths) == 0 {
		return record
	}
	out := make(map[string]any, len(paths))
	for _, path := range paths {
		value, ok := dotpath.Get(record, path)
		if !ok {
			continue
		}
		_ = dotpath.Set(out, path, value)
	}
	return out
}

type matchedRecord struct {
	record   map[string]any
	isPrefix bool
}
