package cli

import (
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-choices/pkg/config"
	"github.com/goliatone/go-choices/pkg/events"
	"github.com/goliatone/go-choices/pkg/field"
	"github.com/goliatone/go-choices/pkg/refresh"
	"github.com/goliatone/go-choices/pkg/watch"
)

// buildForm loads the documents at path and binds their fields to a record
// seeded with data. Value restores run inline so no timer outlives a command.
func (a *app) buildForm(path string, data map[string]any) (*field.Form, error) {
	if strings.TrimSpace(path) == "" {
		return nil, goerr.New("config path is required")
	}
	store, err := config.LoadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load field documents", goerr.V("path", path))
	}
	if store.Empty() {
		return nil, goerr.New("no fields found", goerr.V("path", path))
	}
	logger := a.log()
	return field.NewForm(store.Fields(),
		field.WithLogger(logger),
		field.WithRecord(watch.NewRecord(data, nil)),
		field.WithClient(a.clientCfg.Client(logger)),
		field.WithScheduler(refresh.ImmediateScheduler{}),
		field.WithHooks(events.LogHook(logger)),
	)
}

// parseAssignments turns key=value pairs into record data. Values that parse
// as JSON keep their decoded type; anything else is stored as a string.
func parseAssignments(pairs []string) (map[string]any, error) {
	data := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, goerr.New("invalid assignment, expected key=value", goerr.V("value", pair))
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		data[key] = value
	}
	return data, nil
}
