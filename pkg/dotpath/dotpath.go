// Package dotpath reads and writes values inside decoded JSON documents using
// dotted paths such as `a.b.0.c` or `a.b[0].c`.
package dotpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Split turns a path into its segments. Bracketed indices are treated as
// regular segments, so `items[2].name` yields ["items", "2", "name"].
func Split(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if strings.ContainsAny(path, "[]") {
		path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	}
	raw := strings.Split(path, ".")
	segments := make([]string, 0, len(raw))
	for _, segment := range raw {
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// Get resolves path inside root. The boolean is false when any segment is
// missing or traverses a non-container value.
func Get(root any, path string) (any, bool) {
	segments := Split(path)
	if len(segments) == 0 {
		return nil, false
	}
	current := root
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set writes value at path, creating intermediate maps and slices as needed.
func Set(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("dotpath: root map is nil")
	}
	segments := Split(path)
	if len(segments) == 0 {
		return fmt.Errorf("dotpath: empty path")
	}
	_, err := setIn(root, segments, value)
	return err
}

// setIn returns the (possibly reallocated) container so slices that grow can
// be written back into their parent.
func setIn(node any, segments []string, value any) (any, error) {
	segment := segments[0]
	last := len(segments) == 1

	switch typed := node.(type) {
	case map[string]any:
		if last {
			typed[segment] = value
			return typed, nil
		}
		child, err := setIn(containerFor(typed[segment], segments[1]), segments[1:], value)
		if err != nil {
			return nil, err
		}
		typed[segment] = child
		return typed, nil
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("dotpath: expected numeric segment, got %q", segment)
		}
		if idx < 0 {
			return nil, fmt.Errorf("dotpath: negative index %d", idx)
		}
		if len(typed) <= idx {
			typed = append(typed, make([]any, idx+1-len(typed))...)
		}
		if last {
			typed[idx] = value
			return typed, nil
		}
		child, err := setIn(containerFor(typed[idx], segments[1]), segments[1:], value)
		if err != nil {
			return nil, err
		}
		typed[idx] = child
		return typed, nil
	default:
		return nil, fmt.Errorf("dotpath: unexpected container for segment %q", segment)
	}
}

// containerFor reuses existing when it is a container, otherwise allocates a
// slice for numeric next segments and a map for everything else.
func containerFor(existing any, next string) any {
	switch existing.(type) {
	case map[string]any, []any:
		return existing
	}
	if _, err := strconv.Atoi(next); err == nil {
		return []any{}
	}
	return map[string]any{}
}
