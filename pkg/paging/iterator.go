package paging

import (
	"context"
	"errors"
	"iter"
)

var errInvalidLimit = errors.New("paging: limit must be positive")

// PageFetcher loads the page starting at offset.
type PageFetcher func(ctx context.Context, offset, limit int) ([]any, error)

// All walks every page of a source, stopping after the first page shorter
// than limit. A fetch error is yielded once and ends the sequence.
func All(ctx context.Context, limit int, fetch PageFetcher) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		if limit <= 0 {
			yield(nil, errInvalidLimit)
			return
		}
		offset := 0
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			items, err := fetch(ctx, offset, limit)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if len(items) < limit {
				return
			}
			offset += limit
		}
	}
}

// Collect gathers up to maxItems items from All. A non-positive maxItems
// collects everything.
func Collect(ctx context.Context, limit, maxItems int, fetch PageFetcher) ([]any, error) {
	var out []any
	for item, err := range All(ctx, limit, fetch) {
		if err != nil {
			return out, err
		}
		out = append(out, item)
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
	}
	return out, nil
}
