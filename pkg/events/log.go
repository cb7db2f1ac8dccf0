package events

import (
	"context"
	"log/slog"
)

// LogHook writes every event to logger at debug level.
func LogHook(logger *slog.Logger) Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return HookFunc(func(ctx context.Context, event Event) error {
		logger.DebugContext(ctx, event.Name,
			"id", event.ID,
			"field", event.FieldKey,
			"instance", event.FieldID,
			"widget", event.Widget,
			"source", event.Source,
			"trigger", event.Trigger,
			"items", event.Items,
		)
		return nil
	})
}
