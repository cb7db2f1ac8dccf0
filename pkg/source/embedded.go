package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mohae/deepcopy"
	"golang.org/x/text/cases"

	"github.com/goliatone/go-choices/pkg/accessor"
	"github.com/goliatone/go-choices/pkg/dotpath"
	"github.com/goliatone/go-choices/pkg/interpolate"
	"github.com/goliatone/go-choices/pkg/model"
)

type embeddedLoader struct {
	items    []any
	mode     model.FilterMode
	template string
	accessor accessor.Accessor
	renderer *interpolate.Renderer
	logger   *slog.Logger
}

func newEmbedded(cfg model.FieldConfig, o options) *embeddedLoader {
	l := &embeddedLoader{
		mode:     cfg.FilterMode,
		template: cfg.Template,
		accessor: accessor.New(cfg, accessor.WithLogger(o.logger)),
		renderer: o.renderer,
		logger:   o.logger,
	}
	items, err := parseEmbedded(cfg.Embedded.JSON, cfg.SelectValuesPath)
	if err != nil {
		o.logger.Warn("error parsing JSON",
			"field", cfg.Key,
			"source", string(model.SourceEmbedded),
			"error", err,
		)
		items = []any{}
	}
	l.items = items
	return l
}

// parseEmbedded decodes raw (text, bytes or an already decoded value) and
// narrows it to the list found at path.
func parseEmbedded(raw any, path string) ([]any, error) {
	var doc any
	switch typed := raw.(type) {
	case nil:
		return []any{}, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return []any{}, nil
		}
		if err := json.Unmarshal([]byte(typed), &doc); err != nil {
			return nil, fmt.Errorf("source: decode embedded json: %w", err)
		}
	case []byte:
		if len(typed) == 0 {
			return []any{}, nil
		}
		if err := json.Unmarshal(typed, &doc); err != nil {
			return nil, fmt.Errorf("source: decode embedded json: %w", err)
		}
	default:
		doc = deepcopy.Copy(typed)
	}

	if path != "" {
		narrowed, ok := dotpath.Get(doc, path)
		if !ok {
			return nil, fmt.Errorf("source: select values path %q not found", path)
		}
		doc = narrowed
	}

	switch typed := doc.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return typed, nil
	case []map[string]any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = typed[i]
		}
		return out, nil
	default:
		return []any{typed}, nil
	}
}

func (l *embeddedLoader) Kind() model.SourceKind {
	return model.SourceEmbedded
}

// Load filters the parsed items by the search text, then returns the
// offset/limit window of the matches.
func (l *embeddedLoader) Load(_ context.Context, req model.LoadRequest, _ Env) (Result, error) {
	matches := l.items
	if req.SearchText != "" {
		matches = l.filter(req.SearchText)
	}

	start := req.Offset
	if start < 0 {
		start = 0
	}
	if start > len(matches) {
		start = len(matches)
	}
	end := len(matches)
	if req.Limit > 0 && start+req.Limit < end {
		end = start + req.Limit
	}
	return Result{Items: cloneItems(matches[start:end])}, nil
}

// filter keeps the items whose display text matches input. FilterStartsWith
// matches anywhere in the text and FilterContains (the default) matches only
// at the start, preserving the behaviour forms were authored against.
func (l *embeddedLoader) filter(input string) []any {
	folder := cases.Fold()
	needle := folder.String(input)

	out := make([]any, 0, len(l.items))
	for _, item := range l.items {
		text := folder.String(l.displayText(item))
		var matched bool
		switch l.mode {
		case model.FilterStartsWith:
			matched = strings.Contains(text, needle)
		default:
			matched = strings.HasPrefix(text, needle)
		}
		if matched {
			out = append(out, item)
		}
	}
	return out
}

func (l *embeddedLoader) displayText(item any) string {
	text, err := l.renderer.DisplayText(l.template, item)
	if err == nil && text != "" {
		return text
	}
	if err != nil {
		l.logger.Debug("display template failed, using label", "error", err)
	}
	return fmt.Sprint(l.accessor.ItemLabel(item))
}

// EmbeddedItems returns every item of an embedded source, unfiltered and
// unpaged.
func EmbeddedItems(cfg model.FieldConfig) ([]any, error) {
	return parseEmbedded(cfg.Embedded.JSON, cfg.SelectValuesPath)
}
